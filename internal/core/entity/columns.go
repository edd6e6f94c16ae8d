package entity

import (
	"reflect"
	"sync"
)

// ColumnNames extracts all column names from struct "db" tags.
// It handles embedded structs (like Audit) recursively.
//
// Usage:
//
//	columns := ColumnNames[stock.Item]()
//	// Returns: ["spare_code", "division", "spare_description", ...]
func ColumnNames[T any]() []string {
	var zero T
	return columnsOfType(reflect.TypeOf(zero))
}

func columnsOfType(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var cols []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			cols = append(cols, columnsOfType(field.Type)...)
			continue
		}
		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		cols = append(cols, tag)
	}
	return cols
}

// fieldInfo contains pre-computed metadata about a struct field.
type fieldInfo struct {
	index []int  // index path, embedded structs flattened
	dbTag string // database column name
}

// typeCache holds map[reflect.Type][]fieldInfo.
var typeCache sync.Map

// fieldsOf returns cached field metadata for t.
func fieldsOf(t reflect.Type) []fieldInfo {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := typeCache.Load(t); ok {
		return cached.([]fieldInfo)
	}

	var fields []fieldInfo
	var walk func(t reflect.Type, prefix []int)
	walk = func(t reflect.Type, prefix []int) {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			path := append(append([]int(nil), prefix...), i)
			if field.Anonymous && field.Type.Kind() == reflect.Struct {
				walk(field.Type, path)
				continue
			}
			tag := field.Tag.Get("db")
			if tag == "" || tag == "-" {
				continue
			}
			fields = append(fields, fieldInfo{index: path, dbTag: tag})
		}
	}
	if t.Kind() == reflect.Struct {
		walk(t, nil)
	}

	typeCache.Store(t, fields)
	return fields
}

// Columns converts a struct to a map using "db" tags.
// Only fields that have a "db" tag and are not ignored ("-") are included.
func Columns(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	fields := fieldsOf(rv.Type())
	res := make(map[string]any, len(fields))
	for _, fi := range fields {
		res[fi.dbTag] = rv.FieldByIndex(fi.index).Interface()
	}
	return res
}

// Field returns the addressable struct field bound to column, or false.
// v must be a non-nil pointer to a struct.
func Field(v any, column string) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return reflect.Value{}, false
	}
	rv = rv.Elem()
	for _, fi := range fieldsOf(rv.Type()) {
		if fi.dbTag == column {
			return rv.FieldByIndex(fi.index), true
		}
	}
	return reflect.Value{}, false
}

// AssignedColumns is Columns without nil pointer fields, so patch structs yield only
// the columns a caller supplied.
func AssignedColumns(v any) map[string]any {
	res := Columns(v)
	for col, val := range res {
		rv := reflect.ValueOf(val)
		if rv.Kind() == reflect.Ptr && rv.IsNil() {
			delete(res, col)
		}
	}
	return res
}
