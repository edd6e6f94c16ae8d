// Package parameter keeps the single row of company-wide settings an admin maintains:
// the financial year, the last invoice of each billing series and the RFR counter.
package parameter

import "time"

// Table is the parameters table name. It holds one row.
const Table = "parameters"

// Parameters are the company-wide settings. RFRNumber is the last issued RFR number
// and lives in the identifier counters, not in Table.
type Parameters struct {
	FinancialYear       string    `db:"financial_year" json:"financial_year" validate:"required,len=4,numeric"`
	InvoiceDateSmart    time.Time `db:"invoice_date_smart" json:"invoice_date_smart" validate:"required"`
	InvoiceNoSmart      string    `db:"invoice_no_smart" json:"invoice_no_smart" validate:"required,len=5"`
	InvoiceDateUnique   time.Time `db:"invoice_date_unique" json:"invoice_date_unique" validate:"required"`
	InvoiceNoUnique     string    `db:"invoice_no_unique" json:"invoice_no_unique" validate:"required,len=5"`
	InvoicingPermission string    `db:"invoicing_permission" json:"invoicing_permission" validate:"required,oneof=Y N"`
	RFRNumber           string    `db:"-" json:"rfr_number" validate:"required,max=10"`
}
