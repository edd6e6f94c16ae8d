// Package pdf renders challans with fpdf, compositing each page over a static template.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/gofpdi"

	"servicecenter/internal/core/apperror"
	"servicecenter/internal/domain/report"
	"servicecenter/pkg/logger"
)

const (
	headerFont = 10
	rowFont    = 9
	pageBox    = "/MediaBox"
)

// Renderer implements report.Renderer.
type Renderer struct {
	layout      report.Layout
	templateDir string
}

// New creates a renderer. An empty templateDir renders overlays only; otherwise every
// challan type needs its template file there.
func New(layout report.Layout, templateDir string) *Renderer {
	return &Renderer{layout: layout, templateDir: templateDir}
}

var _ report.Renderer = (*Renderer)(nil)

// Render implements report.Renderer.
func (r *Renderer) Render(ctx context.Context, challan report.Challan) ([]byte, error) {
	tpl, err := r.loadTemplate(challan.Type)
	if err != nil {
		return nil, err
	}

	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	doc.SetCreator("servicecenter", false)
	doc.SetTitle("Challan "+challan.Header.ChallanNumber, true)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	importer := gofpdi.NewImporter()
	templates, err := importTemplates(doc, importer, tpl)
	if err != nil {
		return nil, err
	}

	pages := report.Paginate(challan.Rows, r.layout.Capacity())
	if len(pages) == 0 {
		pages = [][]report.Row{nil}
	}
	columns := challan.Type.Columns()

	for i, rows := range pages {
		doc.AddPage()
		w, h := doc.GetPageSize()
		if len(templates) > 0 {
			importer.UseImportedTemplate(doc, templates[i%len(templates)], 0, 0, w, h)
		}

		r.drawHeader(doc, tr, h, challan.Header)

		doc.SetFont("Helvetica", "", rowFont)
		for slot, row := range rows {
			y := h - r.layout.RowY(slot)
			for _, col := range columns {
				text := tr(row.Text(col.Field))
				doc.Text(col.Mid()-doc.GetStringWidth(text)/2, y, text)
			}
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render challan %s: %w", challan.Header.ChallanNumber, err)
	}

	logger.FromContext(ctx).WithComponent("pdf").Infow("challan rendered",
		"challan_number", challan.Header.ChallanNumber,
		"type", challan.Type,
		"rows", len(challan.Rows),
		"pages", len(pages),
		"template_pages", len(templates),
	)
	return buf.Bytes(), nil
}

func (r *Renderer) drawHeader(doc *fpdf.Fpdf, tr func(string) string, pageH float64, h report.Header) {
	l := r.layout.Header
	doc.SetFont("Helvetica", "B", headerFont)
	draw := func(p report.Point, s string) {
		doc.Text(p.X, pageH-p.Y, tr(s))
	}
	draw(l.ChallanNumber, h.ChallanNumber)
	draw(l.Date, h.DateText())
	draw(l.Division, h.Division)
	draw(l.DocketNumber, h.DocketNumber)
	draw(l.SentThrough, h.SentThrough)
	draw(l.PreparedBy, h.PreparedBy)
}

func (r *Renderer) loadTemplate(t report.ChallanType) ([]byte, error) {
	if r.templateDir == "" {
		return nil, nil
	}
	path := filepath.Join(r.templateDir, t.Template())
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperror.NewInternal(fmt.Errorf("challan template %s not found: %w", path, err))
	}
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}
	return data, nil
}

// importTemplates imports every page of the template. The importer panics on malformed input.
func importTemplates(doc *fpdf.Fpdf, importer *gofpdi.Importer, data []byte) (ids []int, err error) {
	if len(data) == 0 {
		return nil, nil
	}
	defer func() {
		if p := recover(); p != nil {
			ids, err = nil, fmt.Errorf("import template: %v", p)
		}
	}()

	rs := io.ReadSeeker(bytes.NewReader(data))
	ids = append(ids, importer.ImportPageFromStream(doc, &rs, 1, pageBox))
	for page := 2; page <= len(importer.GetPageSizes()); page++ {
		ids = append(ids, importer.ImportPageFromStream(doc, &rs, page, pageBox))
	}
	if doc.Err() {
		return nil, fmt.Errorf("import template: %w", doc.Error())
	}
	return ids, nil
}
