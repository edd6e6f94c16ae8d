// Package grc runs the goods-return cycle: receiving issued spares, returning good and
// defective parts against challans, and the challan documents.
package grc

import (
	"time"

	"servicecenter/internal/core/numerator"
	"servicecenter/internal/domain"
	"servicecenter/internal/domain/filter"
	"servicecenter/internal/domain/report"
)

// Ledger is one company's GRC book: its tables and challan series.
// The tables of every ledger share one layout.
type Ledger struct {
	Company      string
	Table        string
	DisputeTable string
	HistoryTable string
	Challan      numerator.Family
}

// Ledgers.
var (
	CGCEL = Ledger{
		Company:      "CGCEL",
		Table:        "grc_lines",
		DisputeTable: "grc_disputes",
		HistoryTable: "grc_return_history",
		Challan:      numerator.Challan,
	}
	CGPISL = Ledger{
		Company:      "CGPISL",
		Table:        "grc_cgpisl_lines",
		DisputeTable: "grc_cgpisl_disputes",
		HistoryTable: "grc_cgpisl_return_history",
		Challan:      numerator.ChallanCGPISL,
	}
)

// Key identifies a GRC line.
type Key struct {
	SpareCode string `json:"spare_code" validate:"required,max=30"`
	GRCNumber int    `json:"grc_number" validate:"required,gt=0"`
}

// Line is one spare issued under a GRC number.
type Line struct {
	SpareCode        string     `db:"spare_code" json:"spare_code" validate:"required,max=30"`
	GRCNumber        int        `db:"grc_number" json:"grc_number" validate:"required"`
	Division         *string    `db:"division" json:"division,omitempty" validate:"omitempty,max=20"`
	SpareDescription *string    `db:"spare_description" json:"spare_description,omitempty" validate:"omitempty,max=40"`
	GRCDate          *time.Time `db:"grc_date" json:"grc_date,omitempty"`
	IssueQty         *int       `db:"issue_qty" json:"issue_qty,omitempty"`
	GRCPendingQty    *int       `db:"grc_pending_qty" json:"grc_pending_qty,omitempty"`

	ReceiveQty    *int       `db:"receive_qty" json:"receive_qty,omitempty"`
	DamagedQty    *int       `db:"damaged_qty" json:"damaged_qty,omitempty"`
	ShortQty      *int       `db:"short_qty" json:"short_qty,omitempty"`
	AltSpareQty   *int       `db:"alt_spare_qty" json:"alt_spare_qty,omitempty"`
	AltSpareCode  *string    `db:"alt_spare_code" json:"alt_spare_code,omitempty"`
	DisputeRemark *string    `db:"dispute_remark" json:"dispute_remark,omitempty"`
	ReceiveDate   *time.Time `db:"receive_date" json:"receive_date,omitempty"`
	ReceivedBy    *string    `db:"received_by" json:"received_by,omitempty"`

	GoodQty          *int    `db:"good_qty" json:"good_qty,omitempty"`
	DefectiveQty     *int    `db:"defective_qty" json:"defective_qty,omitempty"`
	ReturnedQty      *int    `db:"returned_qty" json:"returned_qty,omitempty"`
	ReturningQty     *int    `db:"returning_qty" json:"returning_qty,omitempty"`
	ActualPendingQty *int    `db:"actual_pending_qty" json:"actual_pending_qty,omitempty"`
	Invoice          *string `db:"invoice" json:"invoice,omitempty"`
	Remark           *string `db:"remark" json:"remark,omitempty"`

	ChallanNumber *string    `db:"challan_number" json:"challan_number,omitempty"`
	ChallanDate   *time.Time `db:"challan_date" json:"challan_date,omitempty"`
	DocketNumber  *string    `db:"docket_number" json:"docket_number,omitempty"`
	SentThrough   *string    `db:"sent_through" json:"sent_through,omitempty"`
	ChallanBy     *string    `db:"challan_by" json:"challan_by,omitempty"`

	// Status is N while the line is in the current feed, Y once it dropped out.
	Status    string  `db:"status" json:"status" validate:"required,oneof=Y N"`
	UpdatedBy *string `db:"updated_by" json:"updated_by,omitempty"`
}

// Key returns the line's composite key.
func (l *Line) Key() Key {
	return Key{SpareCode: l.SpareCode, GRCNumber: l.GRCNumber}
}

// Dispute records a receipt that did not match the issued quantity.
type Dispute struct {
	ID               *int64     `db:"id" json:"id,omitempty"`
	SpareCode        string     `db:"spare_code" json:"spare_code"`
	GRCNumber        int        `db:"grc_number" json:"grc_number"`
	Division         *string    `db:"division" json:"division,omitempty"`
	SpareDescription *string    `db:"spare_description" json:"spare_description,omitempty"`
	GRCDate          *time.Time `db:"grc_date" json:"grc_date,omitempty"`
	IssueQty         *int       `db:"issue_qty" json:"issue_qty,omitempty"`
	GRCPendingQty    *int       `db:"grc_pending_qty" json:"grc_pending_qty,omitempty"`
	ReceiveQty       int        `db:"receive_qty" json:"receive_qty"`
	DamagedQty       *int       `db:"damaged_qty" json:"damaged_qty,omitempty"`
	ShortQty         *int       `db:"short_qty" json:"short_qty,omitempty"`
	AltSpareQty      *int       `db:"alt_spare_qty" json:"alt_spare_qty,omitempty"`
	AltSpareCode     *string    `db:"alt_spare_code" json:"alt_spare_code,omitempty"`
	DisputeRemark    *string    `db:"dispute_remark" json:"dispute_remark,omitempty"`
	CreatedBy        string     `db:"created_by" json:"created_by"`
}

// History is one returned quantity sent under a challan.
type History struct {
	ID               *int64     `db:"id" json:"id,omitempty"`
	SpareCode        string     `db:"spare_code" json:"spare_code"`
	GRCNumber        int        `db:"grc_number" json:"grc_number"`
	Division         string     `db:"division" json:"division"`
	SpareDescription *string    `db:"spare_description" json:"spare_description,omitempty"`
	GRCDate          *time.Time `db:"grc_date" json:"grc_date,omitempty"`
	IssueQty         *int       `db:"issue_qty" json:"issue_qty,omitempty"`
	GRCPendingQty    *int       `db:"grc_pending_qty" json:"grc_pending_qty,omitempty"`
	GoodQty          int        `db:"good_qty" json:"good_qty"`
	DefectiveQty     int        `db:"defective_qty" json:"defective_qty"`
	ReturningQty     int        `db:"returning_qty" json:"returning_qty"`
	ChallanNumber    string     `db:"challan_number" json:"challan_number"`
	ChallanDate      time.Time  `db:"challan_date" json:"challan_date"`
	DocketNumber     *string    `db:"docket_number" json:"docket_number,omitempty"`
	SentThrough      *string    `db:"sent_through" json:"sent_through,omitempty"`
	DisputeRemark    *string    `db:"dispute_remark" json:"dispute_remark,omitempty"`
	ChallanBy        string     `db:"challan_by" json:"challan_by"`
}

// ReceiveInput books the physical receipt of one line.
type ReceiveInput struct {
	Key
	ReceiveQty    int     `json:"receive_qty" validate:"gte=0"`
	DamagedQty    *int    `db:"damaged_qty" json:"damaged_qty" validate:"omitempty,gte=0"`
	ShortQty      *int    `db:"short_qty" json:"short_qty" validate:"omitempty,gte=0"`
	AltSpareQty   *int    `db:"alt_spare_qty" json:"alt_spare_qty" validate:"omitempty,gte=0"`
	AltSpareCode  *string `db:"alt_spare_code" json:"alt_spare_code" validate:"omitempty,max=30"`
	DisputeRemark *string `db:"dispute_remark" json:"dispute_remark" validate:"omitempty,max=40"`
}

// ReturnInput stages the quantities to return on one line before the challan is made.
type ReturnInput struct {
	Key
	GoodQty      *int    `db:"good_qty" json:"good_qty" validate:"omitempty,gte=0"`
	DefectiveQty *int    `db:"defective_qty" json:"defective_qty" validate:"omitempty,gte=0"`
	Invoice      *string `db:"invoice" json:"invoice" validate:"omitempty,max=20"`
	DocketNumber *string `db:"docket_number" json:"docket_number" validate:"omitempty,max=8"`
	SentThrough  *string `db:"sent_through" json:"sent_through" validate:"omitempty,max=20"`
	Remark       *string `db:"remark" json:"remark" validate:"omitempty,max=40"`
}

// FinalizeRow is the quantity returned on one line.
type FinalizeRow struct {
	Key
	GoodQty      int `json:"good_qty" validate:"gte=0"`
	DefectiveQty int `json:"defective_qty" validate:"gte=0"`
}

// FinalizeInput sends the staged returns of a division under one challan.
type FinalizeInput struct {
	// ChallanNumber is drawn from the challan family when empty.
	ChallanNumber string        `json:"challan_number" validate:"omitempty,max=10"`
	Division      string        `json:"division" validate:"required,max=20"`
	DocketNumber  *string       `json:"docket_number" validate:"omitempty,max=8"`
	SentThrough   *string       `json:"sent_through" validate:"omitempty,max=20"`
	Rows          []FinalizeRow `json:"grc_rows" validate:"required,min=1,dive"`
}

// FinalizeResult reports a finalized challan.
type FinalizeResult struct {
	ChallanNumber string `json:"challan_number"`
	Updated       int    `json:"updated"`
	History       int    `json:"history"`
}

// Pending status selects open lines in the enquiry; anything else selects the return history.
const PendingStatus = "N"

// EnquiryLimit is the default enquiry page size.
const EnquiryLimit = 100

// Query is the GRC enquiry.
type Query struct {
	Division      string     `form:"division"`
	SpareCode     string     `form:"spare_code"`
	FromGRCDate   *time.Time `form:"from_grc_date" time_format:"2006-01-02"`
	ToGRCDate     *time.Time `form:"to_grc_date" time_format:"2006-01-02"`
	GRCNumber     *int       `form:"grc_number"`
	ChallanNumber string     `form:"challan_number"`
	Status        string     `form:"grc_status"`

	domain.Page
}

// Pending reports whether the enquiry targets open lines.
func (q Query) Pending() bool { return q.Status == PendingStatus }

// Filters compiles the enquiry into predicates shared by lines and history.
func (q Query) Filters() *filter.Set {
	return new(filter.Set).
		Eq("division", q.Division).
		Contains("spare_code", q.SpareCode).
		Between("grc_date", q.FromGRCDate, q.ToGRCDate).
		Eq("grc_number", q.GRCNumber).
		Eq("challan_number", q.ChallanNumber)
}

// EnquiryRow is the common projection of lines and history rows.
// Pending rows never carry challan details.
type EnquiryRow struct {
	SpareCode        string     `json:"spare_code"`
	SpareDescription *string    `json:"spare_description"`
	GRCNumber        int        `json:"grc_number"`
	GRCDate          *time.Time `json:"grc_date"`
	IssueQty         *int       `json:"issue_qty"`
	GRCPendingQty    *int       `json:"grc_pending_qty"`
	ReturningQty     *int       `json:"returning_qty"`
	DisputeRemark    *string    `json:"dispute_remark"`
	ChallanNumber    *string    `json:"challan_number"`
	ChallanDate      *time.Time `json:"challan_date"`
	DocketNumber     *string    `json:"docket_number"`
}

// ChallanRequest is the client's challan print request.
type ChallanRequest struct {
	ChallanNumber string       `json:"challan_number" validate:"required,max=10"`
	Division      string       `json:"division" validate:"required,max=20"`
	DocketNumber  string       `json:"docket_number" validate:"omitempty,max=8"`
	SentThrough   string       `json:"sent_through" validate:"omitempty,max=20"`
	Rows          []report.Row `json:"grc_rows"`
}
