package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicecenter/internal/core/apperror"
)

func TestLayout_Capacity(t *testing.T) {
	assert.Equal(t, 33, DefaultLayout().Capacity())
	assert.Equal(t, 1, Layout{StartY: 40, LineHeight: 19, BottomMargin: 30}.Capacity())
	assert.Equal(t, 1, Layout{}.Capacity())
}

func TestPaginate(t *testing.T) {
	rows := make([]Row, 65)
	for i := range rows {
		rows[i].GRCNumber = i + 1
	}

	pages := Paginate(rows, 30)
	require.Len(t, pages, 3)
	assert.Len(t, pages[0], 30)
	assert.Len(t, pages[1], 30)
	assert.Len(t, pages[2], 5)
	assert.Equal(t, 61, pages[2][0].GRCNumber)

	assert.Len(t, Paginate(rows[:30], 30), 1, "exact fit stays on one page")
	assert.Empty(t, Paginate(nil, 30))
}

func TestRow_Text(t *testing.T) {
	date := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)
	good := 4
	r := Row{GRCNumber: 1201, GRCDate: &date, SpareCode: "SP1", GoodQty: &good}

	assert.Equal(t, "1201", r.Text(FieldGRCNumber))
	assert.Equal(t, "07-03-2024", r.Text(FieldGRCDate))
	assert.Equal(t, "4", r.Text(FieldGoodQty))
	assert.Equal(t, "0", r.Text(FieldDefectiveQty), "missing quantity prints 0")
	assert.Equal(t, "0", r.Text(FieldActualPendingQty))
	assert.Equal(t, "", Row{}.Text(FieldGRCDate))
}

func TestChallanType_Columns(t *testing.T) {
	tests := []struct {
		typ  ChallanType
		last string
		n    int
	}{
		{Defective, FieldDefectiveQty, 5},
		{Good, FieldGoodQty, 5},
		{Blank, FieldActualPendingQty, 5},
		{All, FieldDefectiveQty, 7},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			cols := tt.typ.Columns()
			require.Len(t, cols, tt.n)
			assert.Equal(t, tt.last, cols[len(cols)-1].Field)
			for i := 1; i < len(cols); i++ {
				assert.Equal(t, cols[i-1].X1, cols[i].X0, "columns are contiguous")
			}
		})
	}
}

func TestParseChallanType(t *testing.T) {
	typ, err := ParseChallanType("Good")
	require.NoError(t, err)
	assert.Equal(t, Good, typ)
	assert.Equal(t, "grc_good.pdf", typ.Template())
	assert.Equal(t, "grc_all.pdf", Blank.Template())

	_, err = ParseChallanType("good")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestHeader_DateText(t *testing.T) {
	h := Header{Date: time.Date(2025, 12, 1, 15, 0, 0, 0, time.UTC)}
	assert.Equal(t, "01-12-2025", h.DateText())
}
