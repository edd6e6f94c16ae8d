package pdf

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicecenter/internal/core/apperror"
	"servicecenter/internal/domain/report"
)

func challanRows(n int) []report.Row {
	rows := make([]report.Row, n)
	for i := range rows {
		qty := i
		rows[i] = report.Row{
			GRCNumber:        1000 + i,
			SpareCode:        "SP" + string(rune('A'+i%26)),
			SpareDescription: "Motor winding kit",
			GoodQty:          &qty,
		}
	}
	return rows
}

func testChallan(n int, typ report.ChallanType) report.Challan {
	return report.Challan{
		Type: typ,
		Header: report.Header{
			ChallanNumber: "G00012",
			Date:          time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
			Division:      "FANS",
			PreparedBy:    "asha",
		},
		Rows: challanRows(n),
	}
}

func TestRender_OverlayOnly(t *testing.T) {
	r := New(report.Layout{StartY: 660, LineHeight: 19, BottomMargin: 90}, "")

	out, err := r.Render(context.Background(), testChallan(65, report.All))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(out), "/Count 3", "65 rows at 30 per page")
}

func TestRender_EmptyChallanHasHeaderPage(t *testing.T) {
	r := New(report.DefaultLayout(), "")

	out, err := r.Render(context.Background(), testChallan(0, report.Blank))
	require.NoError(t, err)
	assert.Contains(t, string(out), "/Count 1")
}

func TestRender_OverlayPagination(t *testing.T) {
	r := New(report.DefaultLayout(), "")

	out, err := r.Render(context.Background(), testChallan(34, report.Good))
	require.NoError(t, err)
	assert.Contains(t, string(out), "/Count 2")
}

func TestRender_MissingTemplateIsASystemError(t *testing.T) {
	r := New(report.DefaultLayout(), t.TempDir())

	_, err := r.Render(context.Background(), testChallan(1, report.Good))
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInternal))
	assert.Equal(t, 500, apperror.GetHTTPStatus(err))
	assert.Contains(t, err.Error(), report.Good.Template())
}

func TestRender_WithTemplate(t *testing.T) {
	dir := t.TempDir()
	tpl := fpdf.New("P", "pt", "A4", "")
	for range 2 {
		tpl.AddPage()
		tpl.SetFont("Helvetica", "", 12)
		tpl.Text(40, 40, "SERVICE CENTER")
	}
	require.NoError(t, tpl.OutputFileAndClose(filepath.Join(dir, report.Defective.Template())))

	r := New(report.DefaultLayout(), dir)
	out, err := r.Render(context.Background(), testChallan(70, report.Defective))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(out), "/Count 3")
}

func TestRender_CorruptTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, report.Good.Template()), []byte("not a pdf"), 0o600))

	_, err := New(report.DefaultLayout(), dir).Render(context.Background(), testChallan(1, report.Good))
	assert.Error(t, err)
}
