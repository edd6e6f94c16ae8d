// Package report lays out GRC challans for PDF overlay rendering.
//
// Coordinates are PDF points measured from the bottom-left corner of an A4 page,
// the same system the static challan templates were drawn in.
package report

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"servicecenter/internal/core/apperror"
)

// ChallanType selects the template and the column set of a challan.
type ChallanType string

const (
	Defective ChallanType = "Defective"
	Good      ChallanType = "Good"
	Blank     ChallanType = "Blank"
	All       ChallanType = "All"
)

// ParseChallanType validates a challan type name.
func ParseChallanType(s string) (ChallanType, error) {
	switch t := ChallanType(s); t {
	case Defective, Good, Blank, All:
		return t, nil
	}
	return "", apperror.NewValidation(fmt.Sprintf("unknown challan type %q", s)).
		WithDetail("allowed", []ChallanType{Defective, Good, Blank, All})
}

// Template returns the template file name for the challan type.
func (t ChallanType) Template() string {
	switch t {
	case Defective:
		return "grc_defective.pdf"
	case Good:
		return "grc_good.pdf"
	default:
		return "grc_all.pdf"
	}
}

// Row field names used by Column.Field.
const (
	FieldGRCNumber        = "grc_number"
	FieldGRCDate          = "grc_date"
	FieldSpareCode        = "spare_code"
	FieldSpareDescription = "spare_description"
	FieldActualPendingQty = "actual_pending_qty"
	FieldGoodQty          = "good_qty"
	FieldDefectiveQty     = "defective_qty"
)

// Column is one data field drawn centred between X0 and X1.
type Column struct {
	Field  string
	X0, X1 float64
}

// Mid returns the horizontal centre of the column.
func (c Column) Mid() float64 {
	return c.X0 + (c.X1-c.X0)/2
}

// Columns returns the column set of the challan type.
func (t ChallanType) Columns() []Column {
	lead := []Column{
		{FieldGRCNumber, 15, 80},
		{FieldGRCDate, 80, 135},
		{FieldSpareCode, 135, 240},
	}
	switch t {
	case Defective:
		return append(lead, Column{FieldSpareDescription, 240, 545}, Column{FieldDefectiveQty, 545, 580})
	case Good:
		return append(lead, Column{FieldSpareDescription, 240, 545}, Column{FieldGoodQty, 545, 580})
	case Blank:
		return append(lead, Column{FieldSpareDescription, 240, 467}, Column{FieldActualPendingQty, 467, 510})
	default:
		return append(lead,
			Column{FieldSpareDescription, 240, 467},
			Column{FieldActualPendingQty, 467, 510},
			Column{FieldGoodQty, 510, 545},
			Column{FieldDefectiveQty, 545, 580},
		)
	}
}

// Point is a header anchor.
type Point struct{ X, Y float64 }

// HeaderLayout places the page header fields.
type HeaderLayout struct {
	ChallanNumber Point
	Date          Point
	Division      Point
	DocketNumber  Point
	SentThrough   Point
	PreparedBy    Point
}

// Layout is the fixed geometry of a challan page.
type Layout struct {
	StartY       float64
	LineHeight   float64
	BottomMargin float64
	Header       HeaderLayout
}

// DefaultLayout matches the shipped challan templates.
func DefaultLayout() Layout {
	return Layout{
		StartY:       660,
		LineHeight:   19,
		BottomMargin: 30,
		Header: HeaderLayout{
			ChallanNumber: Point{88, 740},
			Date:          Point{250, 740},
			Division:      Point{476, 740},
			DocketNumber:  Point{476, 704},
			SentThrough:   Point{144, 704},
			PreparedBy:    Point{474, 36},
		},
	}
}

// Capacity is the number of row slots per page, at least 1.
func (l Layout) Capacity() int {
	if l.LineHeight <= 0 {
		return 1
	}
	n := int(math.Floor((l.StartY - l.BottomMargin) / l.LineHeight))
	if n < 1 {
		return 1
	}
	return n
}

// RowY returns the baseline of the slot-th row on a page.
func (l Layout) RowY(slot int) float64 {
	return l.StartY - float64(slot)*l.LineHeight
}

// Header carries the fields redrawn on every page.
type Header struct {
	ChallanNumber string
	Date          time.Time
	Division      string
	DocketNumber  string
	SentThrough   string
	PreparedBy    string
}

// DateText renders the header date as dd-mm-yyyy.
func (h Header) DateText() string {
	return h.Date.Format("02-01-2006")
}

// Row is one GRC line projected onto the challan columns.
type Row struct {
	GRCNumber        int        `json:"grc_number"`
	GRCDate          *time.Time `json:"grc_date,omitempty"`
	SpareCode        string     `json:"spare_code"`
	SpareDescription string     `json:"spare_description"`
	ActualPendingQty *int       `json:"actual_pending_qty,omitempty"`
	GoodQty          *int       `json:"good_qty,omitempty"`
	DefectiveQty     *int       `json:"defective_qty,omitempty"`
}

// Text returns the printable value of a column. Missing quantities print as 0.
func (r Row) Text(field string) string {
	switch field {
	case FieldGRCNumber:
		return strconv.Itoa(r.GRCNumber)
	case FieldGRCDate:
		if r.GRCDate == nil {
			return ""
		}
		return r.GRCDate.Format("02-01-2006")
	case FieldSpareCode:
		return r.SpareCode
	case FieldSpareDescription:
		return r.SpareDescription
	case FieldActualPendingQty:
		return qty(r.ActualPendingQty)
	case FieldGoodQty:
		return qty(r.GoodQty)
	case FieldDefectiveQty:
		return qty(r.DefectiveQty)
	}
	return ""
}

func qty(v *int) string {
	if v == nil {
		return "0"
	}
	return strconv.Itoa(*v)
}

// Paginate splits rows into pages of at most capacity rows.
// No rows yields no pages.
func Paginate(rows []Row, capacity int) [][]Row {
	if capacity < 1 {
		capacity = 1
	}
	pages := make([][]Row, 0, (len(rows)+capacity-1)/capacity)
	for start := 0; start < len(rows); start += capacity {
		end := min(start+capacity, len(rows))
		pages = append(pages, rows[start:end])
	}
	return pages
}

// Challan is a complete document request.
type Challan struct {
	Type   ChallanType
	Header Header
	Rows   []Row
}

// Renderer turns a challan into a finished PDF.
type Renderer interface {
	Render(ctx context.Context, challan Challan) ([]byte, error)
}
