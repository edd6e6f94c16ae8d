package parameter_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicecenter/internal/domain/parameter"
)

func TestUpdateQuery_LeavesRFRToCounters(t *testing.T) {
	day := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	sql, args, err := updateQuery(&parameter.Parameters{
		FinancialYear:       "2526",
		InvoiceDateSmart:    day,
		InvoiceNoSmart:      "00412",
		InvoiceDateUnique:   day,
		InvoiceNoUnique:     "00098",
		InvoicingPermission: "Y",
		RFRNumber:           "R00041",
	}).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"UPDATE parameters SET financial_year = $1, invoice_date_smart = $2, invoice_date_unique = $3, "+
			"invoice_no_smart = $4, invoice_no_unique = $5, invoicing_permission = $6", sql)
	assert.Len(t, args, 6)
	assert.NotContains(t, args, "R00041")
}

func TestGetQuery(t *testing.T) {
	sql, _, err := NewRepo(nil).Select().Limit(1).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT financial_year, invoice_date_smart, invoice_no_smart, invoice_date_unique, "+
			"invoice_no_unique, invoicing_permission FROM parameters LIMIT 1", sql)
}
