package grc

import (
	"context"
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
	"servicecenter/internal/domain/report"
	"servicecenter/pkg/logger"
)

// UploadSchema is the GRC feed: lines are keyed by spare code and GRC number, lines that
// drop out of the feed are closed and reappearing lines reopen.
func UploadSchema() reconcile.Schema {
	return reconcile.Schema{
		Entity:     "GRC",
		KeyColumns: []string{"spare_code", "grc_number"},
		Upper:      []string{"spare_code", "division", "spare_description"},
		Defaults:   map[string]string{"status": entity.No},

		LifecycleColumns: []string{"status"},
		Policy: reconcile.Policy{
			OnExisting:   reconcile.Update,
			Reopen:       true,
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

// Service implements the goods-return cycle.
type Service struct {
	txm      tx.Manager
	repo     Repository
	gen      numerator.Generator
	engine   *reconcile.Engine[Line]
	renderer report.Renderer
	cfg      Config
	now      func() time.Time
}

// NewService creates the GRC service.
func NewService(
	txm tx.Manager,
	repo Repository,
	gen numerator.Generator,
	feed reconcile.Store[Line],
	renderer report.Renderer,
	cfg Config,
) *Service {
	if cfg.Ledger.Table == "" {
		cfg.Ledger = CGCEL
	}
	return &Service{
		txm:      txm,
		repo:     repo,
		gen:      gen,
		engine:   reconcile.NewEngine(txm, UploadSchema(), feed),
		renderer: renderer,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *Service) username(ctx context.Context) string {
	if u := appctx.GetUsername(ctx); u != "" {
		return u
	}
	return s.cfg.DefaultUser
}

func upper(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

func normalizeKey(k Key) Key {
	k.SpareCode = upper(k.SpareCode)
	return k
}

// Upload reconciles a GRC feed.
func (s *Service) Upload(ctx context.Context, data []byte, filename string) (reconcile.Result, error) {
	return s.engine.Run(ctx, reconcile.Input{Data: data, Filename: filename})
}

// NotReceivedNumbers lists GRC numbers still waiting to be received.
func (s *Service) NotReceivedNumbers(ctx context.Context) ([]int, error) {
	return s.repo.NotReceivedNumbers(ctx)
}

// NotReceived lists the unreceived lines of a GRC number.
func (s *Service) NotReceived(ctx context.Context, grcNumber int) ([]Line, error) {
	return s.repo.NotReceived(ctx, grcNumber)
}

// Receive books receipts. A line received short of its issue quantity also gets a dispute row.
// All lines commit together.
func (s *Service) Receive(ctx context.Context, lines []ReceiveInput) (int, error) {
	if len(lines) == 0 {
		return 0, apperror.NewValidation("no lines to receive")
	}
	for i := range lines {
		if err := validate.Struct(&lines[i]); err != nil {
			return 0, err
		}
	}

	by := s.username(ctx)
	today := entity.DateOf(s.now())
	disputes := 0

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, in := range lines {
			key := normalizeKey(in.Key)
			line, err := s.repo.Lock(ctx, key)
			if err != nil {
				return err
			}

			set := entity.AssignedColumns(&in)
			set["receive_qty"] = in.ReceiveQty
			set["receive_date"] = today
			set["received_by"] = by
			set["updated_by"] = by
			if line.ActualPendingQty == nil {
				set["actual_pending_qty"] = in.ReceiveQty
			}
			if err := s.repo.Update(ctx, key, set); err != nil {
				return err
			}

			if entity.Deref(line.IssueQty) == in.ReceiveQty {
				continue
			}
			if err := s.repo.CreateDispute(ctx, &Dispute{
				SpareCode:        line.SpareCode,
				GRCNumber:        line.GRCNumber,
				Division:         line.Division,
				SpareDescription: line.SpareDescription,
				GRCDate:          line.GRCDate,
				IssueQty:         line.IssueQty,
				GRCPendingQty:    line.GRCPendingQty,
				ReceiveQty:       in.ReceiveQty,
				DamagedQty:       in.DamagedQty,
				ShortQty:         in.ShortQty,
				AltSpareQty:      in.AltSpareQty,
				AltSpareCode:     in.AltSpareCode,
				DisputeRemark:    in.DisputeRemark,
				CreatedBy:        by,
			}); err != nil {
				return err
			}
			disputes++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.FromContext(ctx).WithComponent("grc").Infow("grc received",
		"lines", len(lines), "disputes", disputes)
	return len(lines), nil
}

// ReturnsByDivision lists the open lines of a division for return processing.
func (s *Service) ReturnsByDivision(ctx context.Context, division string) ([]Line, error) {
	return s.repo.OpenByDivision(ctx, upper(division))
}

// SaveReturn stages return quantities and dispatch details. Unknown lines are skipped.
func (s *Service) SaveReturn(ctx context.Context, lines []ReturnInput) (int, error) {
	for i := range lines {
		if err := validate.Struct(&lines[i]); err != nil {
			return 0, err
		}
	}
	by := s.username(ctx)

	saved := 0
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		keys := make([]Key, len(lines))
		for i := range lines {
			keys[i] = normalizeKey(lines[i].Key)
		}
		stored, err := s.repo.LockMany(ctx, keys)
		if err != nil {
			return err
		}
		known := make(map[Key]bool, len(stored))
		for i := range stored {
			known[stored[i].Key()] = true
		}

		for i := range lines {
			if !known[keys[i]] {
				continue
			}
			set := entity.AssignedColumns(&lines[i])
			if len(set) == 0 {
				continue
			}
			set["updated_by"] = by
			if err := s.repo.Update(ctx, keys[i], set); err != nil {
				return err
			}
			saved++
		}
		return nil
	})
	return saved, err
}

// NextChallanNumber previews the number the next challan will get.
func (s *Service) NextChallanNumber(ctx context.Context) (string, error) {
	return s.gen.Next(ctx, s.cfg.Ledger.Challan)
}

// FinalizeReturn sends the returned quantities under one challan. Each line with a returning
// quantity gets a history row; returned grows and actual pending shrinks by the good plus
// defective quantity, and the staged quantities reset to zero.
// Store failures roll everything back and surface as UPDATE_FAILED.
func (s *Service) FinalizeReturn(ctx context.Context, in FinalizeInput) (*FinalizeResult, error) {
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}
	division := upper(in.Division)
	by := s.username(ctx)
	today := entity.DateOf(s.now())

	challan := upper(in.ChallanNumber)
	if challan != "" {
		if n, ok := s.cfg.Ledger.Challan.Normalize(challan); ok {
			challan = n
		}
	}

	res := &FinalizeResult{}
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if challan == "" {
			next, err := s.gen.Next(ctx, s.cfg.Ledger.Challan)
			if err != nil {
				return err
			}
			challan = next
		}

		keys := make([]Key, len(in.Rows))
		for i := range in.Rows {
			keys[i] = normalizeKey(in.Rows[i].Key)
		}
		stored, err := s.repo.LockMany(ctx, keys)
		if err != nil {
			return err
		}
		byKey := make(map[Key]*Line, len(stored))
		for i := range stored {
			byKey[stored[i].Key()] = &stored[i]
		}

		var history []History
		for i, row := range in.Rows {
			line, ok := byKey[keys[i]]
			if !ok {
				continue
			}
			returning := row.GoodQty + row.DefectiveQty
			if returning > 0 {
				history = append(history, History{
					SpareCode:        line.SpareCode,
					GRCNumber:        line.GRCNumber,
					Division:         division,
					SpareDescription: line.SpareDescription,
					GRCDate:          line.GRCDate,
					IssueQty:         line.IssueQty,
					GRCPendingQty:    line.GRCPendingQty,
					GoodQty:          row.GoodQty,
					DefectiveQty:     row.DefectiveQty,
					ReturningQty:     returning,
					ChallanNumber:    challan,
					ChallanDate:      today,
					DocketNumber:     in.DocketNumber,
					SentThrough:      in.SentThrough,
					DisputeRemark:    line.DisputeRemark,
					ChallanBy:        by,
				})
			}

			set := map[string]any{
				"returning_qty":      returning,
				"returned_qty":       entity.Deref(line.ReturnedQty) + returning,
				"actual_pending_qty": entity.Deref(line.ActualPendingQty) - returning,
				"good_qty":           0,
				"defective_qty":      0,
				"challan_number":     challan,
				"challan_date":       today,
				"docket_number":      in.DocketNumber,
				"sent_through":       in.SentThrough,
				"challan_by":         by,
				"updated_by":         by,
			}
			if err := s.repo.Update(ctx, line.Key(), set); err != nil {
				return err
			}
			res.Updated++
		}

		if len(history) > 0 {
			if err := s.repo.CreateHistory(ctx, history); err != nil {
				return err
			}
		}
		res.History = len(history)
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).WithComponent("grc").Errorw("finalize rolled back",
			"challan_number", challan, "error", err)
		return nil, apperror.NewUpdateFailed(err)
	}

	res.ChallanNumber = challan
	logger.FromContext(ctx).WithComponent("grc").Infow("grc return finalized",
		"company", s.cfg.Ledger.Company,
		"challan_number", challan, "division", division, "updated", res.Updated, "history", res.History)
	return res, nil
}

// Enquiry lists open lines (status N) or the return history. Challan numbers may be
// given short ("12" for G00012).
func (s *Service) Enquiry(ctx context.Context, q Query) (domain.ListResult[EnquiryRow], error) {
	if q.ChallanNumber != "" {
		if n, ok := s.cfg.Ledger.Challan.Normalize(q.ChallanNumber); ok {
			q.ChallanNumber = n
		}
	}
	page := q.Page.Normalize(EnquiryLimit)

	if q.Pending() {
		lines, err := s.repo.ListLines(ctx, q.Filters(), page)
		if err != nil {
			return domain.ListResult[EnquiryRow]{}, err
		}
		return project(lines, pendingRow), nil
	}
	hist, err := s.repo.ListHistory(ctx, q.Filters(), page)
	if err != nil {
		return domain.ListResult[EnquiryRow]{}, err
	}
	return project(hist, historyRow), nil
}

func project[T any](in domain.ListResult[T], fn func(*T) EnquiryRow) domain.ListResult[EnquiryRow] {
	out := domain.ListResult[EnquiryRow]{
		Items:      make([]EnquiryRow, len(in.Items)),
		TotalCount: in.TotalCount,
		Limit:      in.Limit,
		Offset:     in.Offset,
	}
	for i := range in.Items {
		out.Items[i] = fn(&in.Items[i])
	}
	return out
}

func pendingRow(l *Line) EnquiryRow {
	return EnquiryRow{
		SpareCode:        l.SpareCode,
		SpareDescription: l.SpareDescription,
		GRCNumber:        l.GRCNumber,
		GRCDate:          l.GRCDate,
		IssueQty:         l.IssueQty,
		GRCPendingQty:    l.GRCPendingQty,
		ReturningQty:     l.ReturningQty,
		DisputeRemark:    l.DisputeRemark,
	}
}

func historyRow(h *History) EnquiryRow {
	return EnquiryRow{
		SpareCode:        h.SpareCode,
		SpareDescription: h.SpareDescription,
		GRCNumber:        h.GRCNumber,
		GRCDate:          h.GRCDate,
		IssueQty:         h.IssueQty,
		GRCPendingQty:    h.GRCPendingQty,
		ReturningQty:     &h.ReturningQty,
		DisputeRemark:    h.DisputeRemark,
		ChallanNumber:    &h.ChallanNumber,
		ChallanDate:      &h.ChallanDate,
		DocketNumber:     h.DocketNumber,
	}
}

// ChallanReport renders a challan PDF of the requested type, stamped with today's date
// and the current user as preparer.
func (s *Service) ChallanReport(ctx context.Context, challanType string, req ChallanRequest) ([]byte, error) {
	t, err := report.ParseChallanType(challanType)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}
	return s.renderer.Render(ctx, report.Challan{
		Type: t,
		Header: report.Header{
			ChallanNumber: upper(req.ChallanNumber),
			Date:          s.now(),
			Division:      upper(req.Division),
			DocketNumber:  req.DocketNumber,
			SentThrough:   req.SentThrough,
			PreparedBy:    s.username(ctx),
		},
		Rows: req.Rows,
	})
}
