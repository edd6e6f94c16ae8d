// Package stock manages the spare-parts stock, indents and stock movements.
package stock

import (
	"time"

	"github.com/shopspring/decimal"

	"servicecenter/internal/core/entity"
	"servicecenter/internal/core/numerator"
	"servicecenter/internal/domain"
	"servicecenter/internal/domain/filter"
)

// Ledger is one company's stock book: its tables and indent series.
// The tables of every ledger share one layout.
type Ledger struct {
	Company       string
	Table         string
	IndentTable   string
	MovementTable string
	Indent        numerator.Family
}

// Ledgers.
var (
	CGCEL = Ledger{
		Company:       "CGCEL",
		Table:         "stock_items",
		IndentTable:   "stock_indents",
		MovementTable: "stock_movements",
		Indent:        numerator.Indent,
	}
	CGPISL = Ledger{
		Company:       "CGPISL",
		Table:         "stock_cgpisl",
		IndentTable:   "stock_cgpisl_indents",
		MovementTable: "stock_cgpisl_movements",
		Indent:        numerator.IndentCGPISL,
	}
)

// Movement types.
const (
	SpareIn  = "SPARE IN"
	SpareOut = "SPARE OUT"
)

// Item is one spare part. Quantities and prices arrive from the manufacturer feed;
// a column the feed does not carry keeps its stored value.
type Item struct {
	SpareCode        string           `db:"spare_code" json:"spare_code" validate:"required,max=30"`
	Division         *string          `db:"division" json:"division,omitempty" validate:"omitempty,max=20"`
	SpareDescription *string          `db:"spare_description" json:"spare_description,omitempty" validate:"omitempty,max=40"`
	CnfQty           *int             `db:"cnf_qty" json:"cnf_qty,omitempty"`
	GrcQty           *int             `db:"grc_qty" json:"grc_qty,omitempty"`
	OwnQty           *int             `db:"own_qty" json:"own_qty,omitempty"`
	Alp              *decimal.Decimal `db:"alp" json:"alp,omitempty"`
	PurchasePrice    *decimal.Decimal `db:"purchase_price" json:"purchase_price,omitempty"`
	Discount         *decimal.Decimal `db:"discount" json:"discount,omitempty"`
	SalePrice        *decimal.Decimal `db:"sale_price" json:"sale_price,omitempty"`
	GstPrice         *decimal.Decimal `db:"gst_price" json:"gst_price,omitempty"`
	GstRate          *decimal.Decimal `db:"gst_rate" json:"gst_rate,omitempty"`
	MslQty           *int             `db:"msl_qty" json:"msl_qty,omitempty"`
	IndentQty        *int             `db:"indent_qty" json:"indent_qty,omitempty"`
	PartyName        *string          `db:"party_name" json:"party_name,omitempty" validate:"omitempty,max=30"`
	OrderNumber      *string          `db:"order_number" json:"order_number,omitempty" validate:"omitempty,max=30"`
	OrderDate        *time.Time       `db:"order_date" json:"order_date,omitempty"`
	Remark           *string          `db:"remark" json:"remark,omitempty" validate:"omitempty,max=40"`
	HsnCode          *string          `db:"hsn_code" json:"hsn_code,omitempty" validate:"omitempty,max=8"`
}

// Available reports whether any stock bucket holds the part.
func (i *Item) Available() bool {
	return entity.Deref(i.CnfQty) > 0 || entity.Deref(i.GrcQty) > 0 || entity.Deref(i.OwnQty) > 0
}

// CatalogEntry is the code/description pair used by pickers.
type CatalogEntry struct {
	SpareCode        string `db:"spare_code" json:"spare_code"`
	SpareDescription string `db:"spare_description" json:"spare_description"`
}

// Indent is one line of a purchase indent.
type Indent struct {
	ID               *int64     `db:"id" json:"id,omitempty"`
	IndentNumber     string     `db:"indent_number" json:"indent_number"`
	IndentDate       time.Time  `db:"indent_date" json:"indent_date"`
	SpareCode        string     `db:"spare_code" json:"spare_code"`
	Division         string     `db:"division" json:"division"`
	SpareDescription string     `db:"spare_description" json:"spare_description"`
	IndentQty        int        `db:"indent_qty" json:"indent_qty"`
	PartyName        *string    `db:"party_name" json:"party_name,omitempty"`
	OrderNumber      *string    `db:"order_number" json:"order_number,omitempty"`
	OrderDate        *time.Time `db:"order_date" json:"order_date,omitempty"`
	Remark           *string    `db:"remark" json:"remark,omitempty"`
	CreatedBy        string     `db:"created_by" json:"created_by"`
}

// Movement records a manual stock adjustment.
type Movement struct {
	ID               *int64    `db:"id" json:"id,omitempty"`
	SpareCode        string    `db:"spare_code" json:"spare_code"`
	Division         string    `db:"division" json:"division"`
	SpareDescription string    `db:"spare_description" json:"spare_description"`
	MovementType     string    `db:"movement_type" json:"movement_type"`
	OwnQty           int       `db:"own_qty" json:"own_qty"`
	Remark           string    `db:"remark" json:"remark"`
	EntryDate        time.Time `db:"entry_date" json:"entry_date"`
	CreatedBy        string    `db:"created_by" json:"created_by"`
}

// MoveInput is a manual SPARE IN / SPARE OUT.
type MoveInput struct {
	SpareCode    string `json:"spare_code" validate:"required,max=30"`
	MovementType string `json:"movement_type" validate:"required,oneof='SPARE IN' 'SPARE OUT'"`
	Qty          int    `json:"own_qty" validate:"required,gt=0"`
	Remark       string `json:"remark" validate:"required,max=40"`
}

// IndentInput books an indent quantity on a spare ahead of indent generation.
type IndentInput struct {
	IndentQty   int        `db:"indent_qty" json:"indent_qty" validate:"gte=0"`
	PartyName   *string    `db:"party_name" json:"party_name" validate:"omitempty,max=30"`
	OrderNumber *string    `db:"order_number" json:"order_number" validate:"omitempty,max=30"`
	OrderDate   *time.Time `db:"order_date" json:"order_date"`
	Remark      *string    `db:"remark" json:"remark" validate:"omitempty,max=40"`
}

// GenerateInput closes the booked indent quantities of one division into a numbered indent.
type GenerateInput struct {
	Division string `json:"division" validate:"required,max=20"`
	// Remark overrides the per-spare remark on every line when set.
	Remark *string `json:"remark" validate:"omitempty,max=40"`
}

// IndentResult is a generated indent.
type IndentResult struct {
	IndentNumber string   `json:"indent_number"`
	Lines        []Indent `json:"lines"`
}

// Query is the stock enquiry.
type Query struct {
	SpareDescription string `form:"spare_description"`
	SpareCode        string `form:"spare_code"`
	Division         string `form:"division"`
	// Available is Y for parts held in any bucket, N for parts held nowhere.
	Available string `form:"available"`

	domain.Page
}

var quantityColumns = []string{"cnf_qty", "grc_qty", "own_qty"}

// Filters compiles the enquiry into predicates.
func (q Query) Filters() *filter.Set {
	set := new(filter.Set).
		Contains("spare_description", q.SpareDescription).
		Contains("spare_code", q.SpareCode).
		Eq("division", q.Division)

	held := make([]filter.Item, 0, len(quantityColumns))
	for _, c := range quantityColumns {
		held = append(held, filter.Item{Field: c, Operator: filter.Greater, Value: 0})
	}
	set.Flag(q.Available == entity.Yes, filter.Item{Operator: filter.AnyOf, Or: held})

	if q.Available == entity.No {
		for _, c := range quantityColumns {
			set.Any(
				filter.Item{Field: c, Operator: filter.IsNull},
				filter.Item{Field: c, Operator: filter.Equal, Value: 0},
			)
		}
	}
	return set
}

// IndentQuery is the indent enquiry.
type IndentQuery struct {
	SpareDescription string     `form:"spare_description"`
	SpareCode        string     `form:"spare_code"`
	Division         string     `form:"division"`
	FromIndentDate   *time.Time `form:"from_indent_date" time_format:"2006-01-02"`
	ToIndentDate     *time.Time `form:"to_indent_date" time_format:"2006-01-02"`
	FromIndentNumber string     `form:"from_indent_number"`
	ToIndentNumber   string     `form:"to_indent_number"`

	domain.Page
}

// Filters compiles the enquiry into predicates.
func (q IndentQuery) Filters() *filter.Set {
	return new(filter.Set).
		Contains("spare_description", q.SpareDescription).
		Contains("spare_code", q.SpareCode).
		Eq("division", q.Division).
		Between("indent_date", q.FromIndentDate, q.ToIndentDate).
		Between("indent_number", q.FromIndentNumber, q.ToIndentNumber)
}
