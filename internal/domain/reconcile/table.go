package reconcile

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var zipMagic = []byte("PK\x03\x04")

// Table is a header-driven sheet with normalised column names.
type Table struct {
	Header []string
	Rows   []Row
}

// Row is one data line. Values holds only non-blank cells.
type Row struct {
	Line   int
	Values map[string]string
}

// Present reports whether column has a value in this row.
func (r Row) Present(column string) bool {
	_, ok := r.Values[column]
	return ok
}

// errNoHeader is reported as a warning, nothing is written.
var errNoHeader = fmt.Errorf("no header row")

// ParseTable decodes data as CSV, or as XLSX (first sheet) when the bytes are a zip archive
// or the file name ends with .xlsx.
func ParseTable(data []byte, filename string) (*Table, error) {
	var (
		records [][]string
		err     error
	)
	if bytes.HasPrefix(data, zipMagic) || strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		records, err = readXLSX(data)
	} else {
		records, err = readCSV(DecodeText(data))
	}
	if err != nil {
		return nil, err
	}
	return buildTable(records)
}

// DecodeText strips a UTF-8 BOM. Invalid UTF-8 is decoded lossily by dropping bad sequences.
func DecodeText(data []byte) string {
	if utf8.Valid(data) {
		if out, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), data); err == nil {
			return string(out)
		}
	}
	return strings.TrimPrefix(strings.ToValidUTF8(string(data), ""), "\ufeff")
}

func readCSV(text string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func buildTable(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, errNoHeader
	}

	header := make([]string, len(records[0]))
	named := 0
	for i, h := range records[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
		if header[i] != "" {
			named++
		}
	}
	if named == 0 {
		return nil, errNoHeader
	}

	t := &Table{Header: header}
	for i, rec := range records[1:] {
		row := Row{Line: i + 2, Values: make(map[string]string, len(header))}
		for j, cell := range rec {
			if j >= len(header) || header[j] == "" {
				continue
			}
			if v := strings.TrimSpace(cell); v != "" {
				row.Values[header[j]] = v
			}
		}
		if len(row.Values) == 0 {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
