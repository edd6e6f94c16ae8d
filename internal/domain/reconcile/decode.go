package reconcile

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"servicecenter/internal/core/entity"
)

// DateLayouts are accepted for date columns, in order.
var DateLayouts = []string{"2006-01-02", "02-01-2006", "02/01/2006", "2006/01/02", "01/02/2006"}

var (
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// decodeRow assigns every present known column of row onto dst (a pointer to a struct).
func decodeRow(dst any, row Row) error {
	for column, raw := range row.Values {
		field, ok := entity.Field(dst, column)
		if !ok {
			continue
		}
		if err := assign(field, raw); err != nil {
			return fmt.Errorf("column %s: %w", column, err)
		}
	}
	return nil
}

func assign(field reflect.Value, raw string) error {
	if field.Kind() == reflect.Pointer {
		elem := reflect.New(field.Type().Elem())
		if err := assign(elem.Elem(), raw); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}

	switch field.Type() {
	case timeType:
		t, err := parseDate(raw)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(t))
		return nil
	case decimalType:
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("invalid number %q", raw)
		}
		field.Set(reflect.ValueOf(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			// Spreadsheets export whole numbers as "12.0".
			f, ferr := strconv.ParseFloat(raw, 64)
			if ferr != nil || f != float64(int64(f)) {
				return fmt.Errorf("invalid integer %q", raw)
			}
			n = int64(f)
		}
		field.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", raw)
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", raw)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

// equalValues compares two values of the same field type, dereferencing pointers.
// Decimals and times compare by value, not representation.
func equalValues(a, b reflect.Value) bool {
	if a.Kind() == reflect.Pointer {
		if a.IsNil() || b.IsNil() {
			return a.IsNil() == b.IsNil()
		}
		return equalValues(a.Elem(), b.Elem())
	}

	switch av := a.Interface().(type) {
	case decimal.Decimal:
		return av.Equal(b.Interface().(decimal.Decimal))
	case time.Time:
		return av.Equal(b.Interface().(time.Time))
	}
	return reflect.DeepEqual(a.Interface(), b.Interface())
}
