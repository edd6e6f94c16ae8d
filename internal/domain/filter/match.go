package filter

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Match evaluates the set against a column map, such as entity.Columns output.
// It mirrors the SQL compiler and backs in-memory repositories.
func (s *Set) Match(row map[string]any) bool {
	for _, it := range s.Items() {
		if !matchItem(it, row) {
			return false
		}
	}
	return true
}

func matchItem(it Item, row map[string]any) bool {
	if it.Operator == AnyOf {
		for _, alt := range it.Or {
			if matchItem(alt, row) {
				return true
			}
		}
		return false
	}

	v, ok := deref(row[it.Field])
	switch it.Operator {
	case IsNull:
		return !ok
	case IsNotNull:
		return ok
	}
	if !ok {
		// SQL comparisons with NULL are never true.
		return false
	}

	switch it.Operator {
	case Equal:
		return compare(v, it.Value) == 0
	case NotEqual:
		return compare(v, it.Value) != 0
	case Less:
		return compare(v, it.Value) < 0
	case LessOrEqual:
		return compare(v, it.Value) <= 0
	case Greater:
		return compare(v, it.Value) > 0
	case GreaterOrEqual:
		return compare(v, it.Value) >= 0
	case InList:
		return inList(v, it.Value)
	case NotInList:
		return !inList(v, it.Value)
	case Contains:
		return strings.Contains(strings.ToLower(fmt.Sprint(v)), strings.ToLower(fmt.Sprint(it.Value)))
	case NotContains:
		return !strings.Contains(strings.ToLower(fmt.Sprint(v)), strings.ToLower(fmt.Sprint(it.Value)))
	case HasPrefix:
		return strings.HasPrefix(fmt.Sprint(v), fmt.Sprint(it.Value))
	case NotHasPrefix:
		return !strings.HasPrefix(fmt.Sprint(v), fmt.Sprint(it.Value))
	}
	return false
}

func deref(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		return rv.Elem().Interface(), true
	}
	return v, true
}

func inList(v, list any) bool {
	rv := reflect.ValueOf(list)
	if rv.Kind() != reflect.Slice {
		return compare(v, list) == 0
	}
	for i := 0; i < rv.Len(); i++ {
		if compare(v, rv.Index(i).Interface()) == 0 {
			return true
		}
	}
	return false
}

// compare orders two scalars: times by instant, numbers numerically, everything else as text.
func compare(a, b any) int {
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if da, ok := number(a); ok {
		if db, ok := number(b); ok {
			return da.Cmp(db)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func number(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	}
	return decimal.Decimal{}, false
}
