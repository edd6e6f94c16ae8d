// Package entitytest helps in-memory repositories apply column maps to records.
package entitytest

import (
	"fmt"
	"reflect"

	"github.com/shopspring/decimal"

	"servicecenter/internal/core/entity"
)

// Apply writes set onto rec (a pointer to a struct) by db column name.
// Plain values are wrapped when the field is a pointer; nil clears pointer fields.
func Apply(rec any, set map[string]any) error {
	for col, v := range set {
		f, ok := entity.Field(rec, col)
		if !ok {
			return fmt.Errorf("unknown column %s", col)
		}
		if v == nil {
			f.Set(reflect.Zero(f.Type()))
			continue
		}
		rv := reflect.ValueOf(v)
		if d, ok := asDecimal(v, f.Type()); ok {
			rv = reflect.ValueOf(d)
		}
		switch {
		case rv.Type().AssignableTo(f.Type()):
			f.Set(rv)
		case f.Kind() == reflect.Pointer && rv.Type().ConvertibleTo(f.Type().Elem()):
			p := reflect.New(f.Type().Elem())
			p.Elem().Set(rv.Convert(f.Type().Elem()))
			f.Set(p)
		case rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Type().ConvertibleTo(f.Type()):
			f.Set(rv.Elem().Convert(f.Type()))
		case rv.Type().ConvertibleTo(f.Type()):
			f.Set(rv.Convert(f.Type()))
		default:
			return fmt.Errorf("column %s: cannot assign %T to %s", col, v, f.Type())
		}
	}
	return nil
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// asDecimal converts integers and floats written to decimal fields.
func asDecimal(v any, t reflect.Type) (decimal.Decimal, bool) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != decimalType {
		return decimal.Decimal{}, false
	}
	switch n := v.(type) {
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	}
	return decimal.Decimal{}, false
}

// MustApply is Apply for test setup.
func MustApply(rec any, set map[string]any) {
	if err := Apply(rec, set); err != nil {
		panic(err)
	}
}
