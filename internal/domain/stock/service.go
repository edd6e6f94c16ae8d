package stock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"servicecenter/internal/core/apperror"
	appctx "servicecenter/internal/core/context"
	"servicecenter/internal/core/entity"
	"servicecenter/internal/core/numerator"
	"servicecenter/internal/core/tx"
	"servicecenter/internal/core/validate"
	"servicecenter/internal/domain"
	"servicecenter/internal/domain/reconcile"
	"servicecenter/pkg/logger"
)

// FeedColumns are the numeric columns a stock feed replaces. Spares missing from a feed
// get the carried ones zeroed.
var FeedColumns = []string{
	"cnf_qty", "grc_qty", "own_qty", "msl_qty", "indent_qty",
	"alp", "purchase_price", "discount", "sale_price", "gst_price", "gst_rate",
}

// UploadSchema is the stock feed: every carried column is written, known spares are updated.
func UploadSchema() reconcile.Schema {
	return reconcile.Schema{
		Entity:     "Spare Code",
		KeyColumns: []string{"spare_code"},
		Upper: []string{
			"spare_code", "division", "spare_description",
			"party_name", "order_number", "remark", "hsn_code",
		},
		Policy: reconcile.Policy{
			OnExisting:   reconcile.Update,
			CloseMissing: true,
		},
	}
}

// Config holds service settings.
type Config struct {
	// DefaultUser stamps writes made without an authenticated user.
	DefaultUser string

	// Ledger selects the company book. Zero means CGCEL.
	Ledger Ledger
}

// Service implements stock use cases.
type Service struct {
	txm    tx.Manager
	repo   Repository
	gen    numerator.Generator
	engine *reconcile.Engine[Item]
	cfg    Config
	now    func() time.Time
}

// NewService creates the stock service.
func NewService(txm tx.Manager, repo Repository, gen numerator.Generator, feed reconcile.Store[Item], cfg Config) *Service {
	if cfg.Ledger.Table == "" {
		cfg.Ledger = CGCEL
	}
	return &Service{
		txm:    txm,
		repo:   repo,
		gen:    gen,
		engine: reconcile.NewEngine(txm, UploadSchema(), feed),
		cfg:    cfg,
		now:    time.Now,
	}
}

func (s *Service) username(ctx context.Context) string {
	if u := appctx.GetUsername(ctx); u != "" {
		return u
	}
	return s.cfg.DefaultUser
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Upload reconciles a stock feed.
func (s *Service) Upload(ctx context.Context, data []byte, filename string) (reconcile.Result, error) {
	return s.engine.Run(ctx, reconcile.Input{Data: data, Filename: filename})
}

// Enquiry lists spares matching q, ordered by spare code.
func (s *Service) Enquiry(ctx context.Context, q Query) (domain.ListResult[Item], error) {
	return s.repo.List(ctx, q.Filters(), q.Page.Normalize(domain.DefaultLimit))
}

// Get returns one spare; unknown codes fail with SPARE_NOT_FOUND.
func (s *Service) Get(ctx context.Context, code string) (*Item, error) {
	return s.repo.Get(ctx, normalizeCode(code))
}

// Catalog lists spare codes and descriptions, optionally of one division.
func (s *Service) Catalog(ctx context.Context, division string) ([]CatalogEntry, error) {
	return s.repo.Catalog(ctx, strings.ToUpper(strings.TrimSpace(division)))
}

// SetIndent books an indent quantity and order details on a spare.
func (s *Service) SetIndent(ctx context.Context, code string, in IndentInput) (*Item, error) {
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}
	code = normalizeCode(code)
	set := entity.AssignedColumns(&in)

	var out *Item
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.Lock(ctx, code); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, code, set); err != nil {
			return err
		}
		var err error
		out, err = s.repo.Get(ctx, code)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PendingIndent lists the division's spares with a booked indent quantity.
func (s *Service) PendingIndent(ctx context.Context, division string) ([]Item, error) {
	var items []Item
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		items, err = s.repo.PendingIndent(ctx, strings.ToUpper(strings.TrimSpace(division)))
		return err
	})
	return items, err
}

// NextIndentNumber previews the number the next indent will get.
func (s *Service) NextIndentNumber(ctx context.Context) (string, error) {
	return s.gen.Next(ctx, s.cfg.Ledger.Indent)
}

// GenerateIndent copies the division's booked quantities into a new indent and clears them.
// A division with nothing booked fails with STOCK_NOT_AVAILABLE.
func (s *Service) GenerateIndent(ctx context.Context, in GenerateInput) (*IndentResult, error) {
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}
	division := strings.ToUpper(strings.TrimSpace(in.Division))
	by := s.username(ctx)

	var lines []Indent
	number, err := numerator.CreateWithRetry(ctx, s.txm, s.gen, s.cfg.Ledger.Indent,
		func(ctx context.Context, code string) error {
			items, err := s.repo.PendingIndent(ctx, division)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				return apperror.NewBusinessRule(apperror.CodeStockNotAvailable, "Stock Not Available").
					WithDetail("division", division)
			}

			today := entity.DateOf(s.now())
			lines = make([]Indent, len(items))
			for i, it := range items {
				lines[i] = Indent{
					IndentNumber:     code,
					IndentDate:       today,
					SpareCode:        it.SpareCode,
					Division:         division,
					SpareDescription: entity.Deref(it.SpareDescription),
					IndentQty:        entity.Deref(it.IndentQty),
					PartyName:        it.PartyName,
					OrderNumber:      it.OrderNumber,
					OrderDate:        it.OrderDate,
					Remark:           it.Remark,
					CreatedBy:        by,
				}
				if in.Remark != nil {
					lines[i].Remark = in.Remark
				}
			}
			if err := s.repo.CreateIndents(ctx, lines); err != nil {
				return err
			}
			_, err = s.repo.ResetIndent(ctx, division)
			return err
		})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithComponent("stock").Infow("indent generated",
		"indent_number", number, "division", division, "lines", len(lines))
	return &IndentResult{IndentNumber: number, Lines: lines}, nil
}

// Move applies a manual SPARE IN or SPARE OUT to the own quantity and records it.
// Own stock never goes below zero.
func (s *Service) Move(ctx context.Context, in MoveInput) (*Item, error) {
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}
	code := normalizeCode(in.SpareCode)

	var out *Item
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		item, err := s.repo.Lock(ctx, code)
		if err != nil {
			return err
		}

		own := entity.Deref(item.OwnQty)
		next := own + in.Qty
		if in.MovementType == SpareOut {
			next = own - in.Qty
		}
		if next < 0 {
			return apperror.NewStockNotAvailable(code, in.Qty, own)
		}

		if err := s.repo.CreateMovement(ctx, &Movement{
			SpareCode:        code,
			Division:         entity.Deref(item.Division),
			SpareDescription: entity.Deref(item.SpareDescription),
			MovementType:     in.MovementType,
			OwnQty:           in.Qty,
			Remark:           strings.ToUpper(in.Remark),
			EntryDate:        entity.DateOf(s.now()),
			CreatedBy:        s.username(ctx),
		}); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, code, map[string]any{"own_qty": next}); err != nil {
			return err
		}
		out, err = s.repo.Get(ctx, code)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithComponent("stock").Infow("stock moved",
		"company", s.cfg.Ledger.Company,
		"spare_code", code, "movement_type", in.MovementType, "qty", in.Qty)
	return out, nil
}

// IndentEnquiry lists indent lines matching q.
func (s *Service) IndentEnquiry(ctx context.Context, q IndentQuery) (domain.ListResult[Indent], error) {
	if q.FromIndentNumber != "" {
		q.FromIndentNumber = s.normalizeIndent(q.FromIndentNumber)
	}
	if q.ToIndentNumber != "" {
		q.ToIndentNumber = s.normalizeIndent(q.ToIndentNumber)
	}
	return s.repo.ListIndents(ctx, q.Filters(), q.Page.Normalize(domain.DefaultLimit))
}

func (s *Service) normalizeIndent(n string) string {
	if v, ok := s.cfg.Ledger.Indent.Normalize(n); ok {
		return v
	}
	return strings.ToUpper(strings.TrimSpace(n))
}

// ExportEnquiry renders the enquiry (without paging) as an XLSX workbook.
func (s *Service) ExportEnquiry(ctx context.Context, q Query) ([]byte, error) {
	list, err := s.repo.List(ctx, q.Filters(), domain.Page{Limit: domain.MaxLimit})
	if err != nil {
		return nil, err
	}
	data, err := exportItems(list.Items)
	if err != nil {
		return nil, fmt.Errorf("export stock: %w", err)
	}
	return data, nil
}
