package customer

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
	"servicecenter/pkg/logger"
)

// Config holds service settings.
type Config struct {
	// DefaultUser stamps writes made without an authenticated user.
	DefaultUser string
}

// Service manages the customer master.
type Service struct {
	txm  tx.Manager
	repo Repository
	gen  numerator.Generator
	cfg  Config
	now  func() time.Time
}

// NewService creates the customer service.
func NewService(txm tx.Manager, repo Repository, gen numerator.Generator, cfg Config) *Service {
	return &Service{txm: txm, repo: repo, gen: gen, cfg: cfg, now: time.Now}
}

func (s *Service) username(ctx context.Context) string {
	if u := appctx.GetUsername(ctx); u != "" {
		return u
	}
	return s.cfg.DefaultUser
}

func normalize(d *Details) {
	d.Type = strings.ToUpper(strings.TrimSpace(d.Type))
	d.Name = strings.TrimSpace(d.Name)
	if d.GST != nil {
		d.GST = entity.Ptr(strings.ToUpper(strings.TrimSpace(*d.GST)))
	}
}

// Create registers a customer under the next C code. Names are unique.
func (s *Service) Create(ctx context.Context, in Details) (*Customer, error) {
	normalize(&in)
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}

	c := &Customer{Details: in}
	c.StampCreate(s.username(ctx), s.now())

	code, err := numerator.CreateWithRetry(ctx, s.txm, s.gen, numerator.Customer,
		func(ctx context.Context, code string) error {
			taken, err := s.repo.NameExists(ctx, in.Name)
			if err != nil {
				return err
			}
			if taken {
				return apperror.NewCustomerAlreadyExists(in.Name)
			}
			c.Code = code
			return s.repo.Create(ctx, c)
		})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithComponent("customer").Infow("customer created",
		"code", code, "name", c.Name)
	return c, nil
}

// NextCode previews the code the next customer will get.
func (s *Service) NextCode(ctx context.Context) (string, error) {
	return s.gen.Next(ctx, numerator.Customer)
}

// Names lists every customer name.
func (s *Service) Names(ctx context.Context) ([]string, error) {
	return s.repo.Names(ctx)
}

// GetByCode loads a customer. Short codes are padded ("12" is C0012).
func (s *Service) GetByCode(ctx context.Context, code string) (*Customer, error) {
	code, ok := numerator.Customer.Normalize(code)
	if !ok {
		return nil, apperror.NewIncorrectCodeFormat(code)
	}
	return s.repo.GetByCode(ctx, code)
}

// GetByName loads a customer by exact name.
func (s *Service) GetByName(ctx context.Context, name string) (*Customer, error) {
	return s.repo.GetByName(ctx, strings.TrimSpace(name))
}

// Update replaces the editable fields. The name cannot change.
func (s *Service) Update(ctx context.Context, code string, in Details) (*Customer, error) {
	normalize(&in)
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}

	var out *Customer
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.GetByCode(ctx, code)
		if err != nil {
			return err
		}
		if existing.Name != in.Name {
			return apperror.NewBusinessRule(apperror.CodeCannotChangeCustomerName, "Customer name cannot be changed").
				WithDetail("name", existing.Name)
		}

		set := entity.Columns(&in)
		delete(set, "name")
		set["updated_by"] = s.username(ctx)
		set["updated_at"] = s.now()
		if err := s.repo.Update(ctx, existing.Code, set); err != nil {
			return err
		}
		out, err = s.repo.GetByCode(ctx, existing.Code)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithComponent("customer").Infow("customer updated", "code", out.Code)
	return out, nil
}
