// Package dashboard computes the grouped counts and totals behind the summary views.
package dashboard

import (
	"context"
	"fmt"

	"servicecenter/internal/core/tx"
	"servicecenter/internal/domain/grc"
	"servicecenter/internal/domain/stock"
)

// Metric is one aggregate column. Expr is trusted SQL built by this package.
type Metric struct {
	Name string
	Expr string
}

// Count counts rows.
func Count(name string) Metric {
	return Metric{Name: name, Expr: "COUNT(*)"}
}

// CountWhere counts rows matching cond.
func CountWhere(name, cond string) Metric {
	return Metric{Name: name, Expr: fmt.Sprintf("COUNT(*) FILTER (WHERE %s)", cond)}
}

// Sum totals column, 0 for an empty table.
func Sum(name, column string) Metric {
	return Metric{Name: name, Expr: fmt.Sprintf("COALESCE(SUM(%s), 0)::bigint", column)}
}

// Spec describes a GROUP BY aggregation. Rows whose group column is null are excluded.
type Spec struct {
	Table   string
	GroupBy string
	Metrics []Metric
}

// Group is one aggregated bucket.
type Group struct {
	Key    string           `json:"key"`
	Values map[string]int64 `json:"values"`
}

// Aggregator runs aggregations against the store.
type Aggregator interface {
	// Aggregate returns one Group per non-null value of spec.GroupBy, ordered by key.
	Aggregate(ctx context.Context, spec Spec) ([]Group, error)
	// Totals evaluates metrics over the whole table.
	Totals(ctx context.Context, table string, metrics ...Metric) (map[string]int64, error)
}

const complaintsTable = "complaints"

// The summary views cover the CGCEL ledgers.
var (
	stockTable = stock.CGCEL.Table
	grcTable   = grc.CGCEL.Table
)

// ComplaintOverview summarises complaints.
type ComplaintOverview struct {
	DivisionStatus []Group          `json:"division_wise_status"`
	ComplaintType  []Group          `json:"complaint_type"`
	Counters       map[string]int64 `json:"counters"`
}

// StockOverview summarises stock.
type StockOverview struct {
	ByDivision []Group          `json:"division_wise_donut"`
	Totals     map[string]int64 `json:"totals"`
}

// GRCOverview summarises GRC lines.
type GRCOverview struct {
	ByDivision []Group `json:"division_wise_donut"`
}

// Service assembles the dashboard views.
type Service struct {
	txm tx.ReadOnlyManager
	agg Aggregator
}

// NewService creates the dashboard service.
func NewService(txm tx.ReadOnlyManager, agg Aggregator) *Service {
	return &Service{txm: txm, agg: agg}
}

// Complaints returns the complaint overview.
func (s *Service) Complaints(ctx context.Context) (*ComplaintOverview, error) {
	out := &ComplaintOverview{}
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		out.DivisionStatus, err = s.agg.Aggregate(ctx, Spec{
			Table:   complaintsTable,
			GroupBy: "product_division",
			Metrics: []Metric{
				CountWhere("Y", "final_status = 'Y'"),
				CountWhere("N", "final_status = 'N'"),
			},
		})
		if err != nil {
			return err
		}
		out.ComplaintType, err = s.agg.Aggregate(ctx, Spec{
			Table:   complaintsTable,
			GroupBy: "complaint_type",
			Metrics: []Metric{Count("count")},
		})
		if err != nil {
			return err
		}
		out.Counters, err = s.agg.Totals(ctx, complaintsTable,
			CountWhere("crm_open_complaints",
				"final_status = 'N' AND complaint_number NOT LIKE 'N%' AND complaint_status NOT IN ('CLOSED', 'NEW', 'CANCELLED')"),
			CountWhere("crm_escalation_complaints",
				"final_status = 'N' AND complaint_priority IN ('ESCALATION', 'HO-ESCALATION')"),
			CountWhere("md_escalation_complaints",
				"final_status = 'N' AND complaint_priority = 'MD-ESCALATION'"),
			CountWhere("high_priority_complaints",
				"final_status = 'N' AND complaint_priority = 'HIGH'"),
			CountWhere("spare_pending_complaints",
				"final_status = 'N' AND spare_pending = 'Y'"),
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Stock returns the stock overview.
func (s *Service) Stock(ctx context.Context) (*StockOverview, error) {
	out := &StockOverview{}
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		out.ByDivision, err = s.agg.Aggregate(ctx, Spec{
			Table:   stockTable,
			GroupBy: "division",
			Metrics: []Metric{Count("count")},
		})
		if err != nil {
			return err
		}
		out.Totals, err = s.agg.Totals(ctx, stockTable,
			Sum("own", "own_qty"),
			Sum("cnf", "cnf_qty"),
			Sum("grc", "grc_qty"),
			Sum("indent", "indent_qty"),
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GRC returns the GRC overview.
func (s *Service) GRC(ctx context.Context) (*GRCOverview, error) {
	out := &GRCOverview{}
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		out.ByDivision, err = s.agg.Aggregate(ctx, Spec{
			Table:   grcTable,
			GroupBy: "division",
			Metrics: []Metric{Count("count")},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
