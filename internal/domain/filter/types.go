// Package filter describes optional enquiry predicates independent of SQL.
// Absent values are no-ops; present predicates compose by AND.
package filter

import (
	"reflect"
	"time"
)

// ComparisonType defines the comparison kind.
type ComparisonType string

const (
	Equal          ComparisonType = "eq"
	NotEqual       ComparisonType = "neq"
	Less           ComparisonType = "lt"
	LessOrEqual    ComparisonType = "lte"
	Greater        ComparisonType = "gt"
	GreaterOrEqual ComparisonType = "gte"
	InList         ComparisonType = "in"
	NotInList      ComparisonType = "nin"
	Contains       ComparisonType = "contains"  // ILIKE %v%
	NotContains    ComparisonType = "ncontains" // NOT ILIKE %v%
	HasPrefix      ComparisonType = "prefix"    // LIKE v%
	NotHasPrefix   ComparisonType = "nprefix"   // NOT LIKE v%
	IsNull         ComparisonType = "null"
	IsNotNull      ComparisonType = "not_null"
	AnyOf          ComparisonType = "or" // Or holds the alternatives
)

// Item is one predicate.
type Item struct {
	Field    string         `json:"field"`
	Operator ComparisonType `json:"operator"`
	Value    any            `json:"value,omitempty"`
	Or       []Item         `json:"or,omitempty"`
}

// Set is an AND-composed list of predicates.
type Set struct {
	items []Item
}

// Items returns the predicates in insertion order.
func (s *Set) Items() []Item {
	if s == nil {
		return nil
	}
	return s.items
}

// Len returns the number of predicates.
func (s *Set) Len() int { return len(s.Items()) }

// Add appends a predicate unless value is absent (nil, "", nil pointer, empty slice).
// IsNull and IsNotNull take no value and are always added.
func (s *Set) Add(field string, op ComparisonType, value any) *Set {
	if op == IsNull || op == IsNotNull {
		s.items = append(s.items, Item{Field: field, Operator: op})
		return s
	}
	v, ok := present(value)
	if !ok {
		return s
	}
	s.items = append(s.items, Item{Field: field, Operator: op, Value: v})
	return s
}

// Eq adds field = value when value is present.
func (s *Set) Eq(field string, value any) *Set { return s.Add(field, Equal, value) }

// Contains adds a case-insensitive substring match when value is present.
func (s *Set) Contains(field string, value any) *Set { return s.Add(field, Contains, value) }

// Between adds from <= field <= to, each bound only when present.
func (s *Set) Between(field string, from, to any) *Set {
	return s.Add(field, GreaterOrEqual, from).Add(field, LessOrEqual, to)
}

// Any adds an OR group; groups with no present alternative are dropped.
func (s *Set) Any(items ...Item) *Set {
	var alts []Item
	for _, it := range items {
		if it.Operator == IsNull || it.Operator == IsNotNull {
			alts = append(alts, it)
			continue
		}
		if v, ok := present(it.Value); ok {
			it.Value = v
			alts = append(alts, it)
		}
	}
	if len(alts) > 0 {
		s.items = append(s.items, Item{Operator: AnyOf, Or: alts})
	}
	return s
}

// Flag adds a compound predicate when on is true. Flags expand to several column conditions.
func (s *Set) Flag(on bool, items ...Item) *Set {
	if !on {
		return s
	}
	for _, it := range items {
		if it.Operator == AnyOf {
			s.Any(it.Or...)
			continue
		}
		s.Add(it.Field, it.Operator, it.Value)
	}
	return s
}

// present dereferences pointers and reports whether v carries a value.
func present(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	switch t := v.(type) {
	case string:
		return t, t != ""
	case time.Time:
		return t, !t.IsZero()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, false
		}
		return present(rv.Elem().Interface())
	case reflect.Slice:
		return v, rv.Len() > 0
	}
	return v, true
}
