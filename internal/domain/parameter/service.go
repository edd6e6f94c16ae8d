package parameter

import (
	"context"
	"strings"

	"servicecenter/internal/core/apperror"
	"servicecenter/internal/core/entity"
	corenumerator "servicecenter/internal/core/numerator"
	"servicecenter/internal/core/tx"
	"servicecenter/internal/core/validate"
	"servicecenter/pkg/logger"
)

// Service reads and updates the company settings.
type Service struct {
	txm      tx.Manager
	repo     Repository
	counters Counters
}

// NewService creates the parameter service.
func NewService(txm tx.Manager, repo Repository, counters Counters) *Service {
	return &Service{txm: txm, repo: repo, counters: counters}
}

// Get returns the settings with the last issued RFR number.
func (s *Service) Get(ctx context.Context) (*Parameters, error) {
	var out *Parameters
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.Get(ctx)
		if err != nil {
			return err
		}
		n, err := s.counters.Counter(ctx, corenumerator.RFR)
		if err != nil {
			return err
		}
		p.RFRNumber = corenumerator.RFR.Format(n)
		out = p
		return nil
	})
	return out, err
}

// Update saves the settings and moves the RFR counter to RFRNumber, so the next
// RFR issued follows it.
func (s *Service) Update(ctx context.Context, in Parameters) (*Parameters, error) {
	in.FinancialYear = strings.TrimSpace(in.FinancialYear)
	in.InvoiceNoSmart = strings.TrimSpace(in.InvoiceNoSmart)
	in.InvoiceNoUnique = strings.TrimSpace(in.InvoiceNoUnique)
	in.InvoicingPermission = strings.ToUpper(strings.TrimSpace(in.InvoicingPermission))
	in.InvoiceDateSmart = entity.DateOf(in.InvoiceDateSmart)
	in.InvoiceDateUnique = entity.DateOf(in.InvoiceDateUnique)
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}
	rfr, ok := corenumerator.RFR.Normalize(in.RFRNumber)
	if !ok {
		return nil, apperror.NewIncorrectCodeFormat(in.RFRNumber)
	}
	n, _ := corenumerator.RFR.Parse(rfr)
	in.RFRNumber = rfr

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Save(ctx, &in); err != nil {
			return err
		}
		return s.counters.SetCounter(ctx, corenumerator.RFR, n)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithComponent("parameter").Infow("parameters updated",
		"financial_year", in.FinancialYear, "rfr_number", in.RFRNumber)
	return &in, nil
}
