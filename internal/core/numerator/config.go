// Package numerator provides sequential business identifiers
// (complaint numbers, customer codes, indent, challan and RFR numbers).
package numerator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Source defines where the current maximum of a family is read from.
type Source int

const (
	// SourceMaxOfColumn derives the next value from the greatest existing key.
	// Races are resolved by the unique constraint plus CreateWithRetry.
	SourceMaxOfColumn Source = iota

	// SourceCounter keeps the last issued value in sys_sequences.
	// Concurrent callers serialise on the counter row lock.
	SourceCounter
)

// DefaultAttempts is the number of create attempts before giving up.
const DefaultAttempts = 3

// Family describes one identifier series.
type Family struct {
	// Name is used in errors and as the sys_sequences key.
	Name string

	// Prefix is the fixed leading text (e.g., "N", "C").
	Prefix string

	// Width is the zero-padded numeric suffix width. It must match historic data:
	// lexicographic order equals numeric order only at constant width.
	Width int

	Source Source

	// Table and Column locate existing keys for SourceMaxOfColumn.
	Table  string
	Column string

	// Serialize takes a transaction-scoped advisory lock on the family before reading the
	// greatest key. Used where the column cannot be unique, so CreateWithRetry cannot detect
	// a collision.
	Serialize bool
}

// Known families.
var (
	Complaint = Family{Name: "complaint", Prefix: "N", Width: 5, Source: SourceMaxOfColumn, Table: "complaints", Column: "complaint_number"}
	Customer  = Family{Name: "customer", Prefix: "C", Width: 4, Source: SourceMaxOfColumn, Table: "customers", Column: "code"}
	Indent    = Family{Name: "indent", Prefix: "I", Width: 5, Source: SourceMaxOfColumn, Table: "stock_indents", Column: "indent_number"}
	Challan   = Family{Name: "challan", Prefix: "G", Width: 5, Source: SourceMaxOfColumn, Table: "grc_return_history", Column: "challan_number", Serialize: true}
	RFR       = Family{Name: "rfr", Prefix: "R", Width: 5, Source: SourceCounter}

	// CGPISL keeps its own indent and challan series.
	IndentCGPISL  = Family{Name: "indent_cgpisl", Prefix: "I", Width: 5, Source: SourceMaxOfColumn, Table: "stock_cgpisl_indents", Column: "indent_number"}
	ChallanCGPISL = Family{Name: "challan_cgpisl", Prefix: "G", Width: 5, Source: SourceMaxOfColumn, Table: "grc_cgpisl_return_history", Column: "challan_number", Serialize: true}
)

// Format renders n as prefix + zero-padded suffix.
func (f Family) Format(n int64) string {
	return fmt.Sprintf("%s%0*d", f.Prefix, f.Width, n)
}

// Pattern returns the POSIX regex matching keys of this family.
func (f Family) Pattern() string {
	return fmt.Sprintf("^%s[0-9]{%d}$", regexp.QuoteMeta(f.Prefix), f.Width)
}

// Matches reports whether key belongs to the family.
func (f Family) Matches(key string) bool {
	if !strings.HasPrefix(key, f.Prefix) {
		return false
	}
	digits := key[len(f.Prefix):]
	if len(digits) != f.Width {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Parse extracts the numeric suffix. Keys outside the family are rejected.
func (f Family) Parse(key string) (int64, bool) {
	if !f.Matches(key) {
		return 0, false
	}
	n, err := strconv.ParseInt(key[len(f.Prefix):], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// After returns the identifier following last. An empty or foreign last starts at 1.
func (f Family) After(last string) string {
	n, _ := f.Parse(last)
	return f.Format(n + 1)
}

// Normalize pads a short numeric code ("12" or "N12") to the family width.
// ok is false when the result still does not match the family.
func (f Family) Normalize(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if f.Matches(code) {
		return code, true
	}
	digits := strings.TrimPrefix(code, f.Prefix)
	if digits == "" || len(digits) > f.Width {
		return code, false
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n < 0 {
		return code, false
	}
	return f.Format(n), true
}
