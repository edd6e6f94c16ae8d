// Package reconcile diffs an uploaded snapshot feed (CSV or XLSX) against the stored
// records of one entity and applies the insert/update/close/reopen delta in a single transaction.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"servicecenter/internal/core/apperror"
	"servicecenter/internal/core/entity"
	"servicecenter/internal/core/tx"
	"servicecenter/internal/core/validate"
	"servicecenter/pkg/logger"
)

// ResultType classifies an upload outcome.
type ResultType string

const (
	TypeSuccess ResultType = "success"
	TypeWarning ResultType = "warning" // user-correctable, nothing written
	TypeError   ResultType = "error"   // store failure, rolled back
)

// Result is the outcome of one upload.
type Result struct {
	Inserted   int        `json:"inserted"`
	Updated    int        `json:"updated"`
	Unchanged  int        `json:"unchanged"`
	Closed     int        `json:"closed"`
	Reopened   int        `json:"reopened"`
	Message    string     `json:"message"`
	Resolution string     `json:"resolution"`
	Type       ResultType `json:"type"`
}

// OnExisting decides what happens to a feed row whose key is already stored.
type OnExisting int

const (
	// Ignore leaves stored records untouched.
	Ignore OnExisting = iota
	// Update writes the row's present columns when they differ.
	Update
)

// Policy holds the per-entity reconciliation rules.
type Policy struct {
	OnExisting OnExisting

	// Reopen marks closed records that reappear in the feed as open.
	Reopen bool

	// CloseMissing treats the feed as the complete active set: open records
	// absent from it are closed.
	CloseMissing bool
}

// Schema describes one reconcilable entity.
type Schema struct {
	// Entity names the feed in messages ("Complaints", "Spare Code").
	Entity string

	// KeyColumns form the business key, scalar or composite.
	KeyColumns []string

	// Upper lists text columns stored upper-case.
	Upper []string

	// Defaults are forced onto every row, overriding feed values.
	Defaults map[string]string

	// InsertDefaults fill columns of new records that the row leaves blank.
	InsertDefaults map[string]string

	// ProtectedPrefix exempts keys generated in the application from CloseMissing.
	ProtectedPrefix string

	// LifecycleColumns belong to Store.Reopen. A reopened row leaves them out of its update.
	LifecycleColumns []string

	Policy Policy
}

// Input is one uploaded file.
type Input struct {
	Data     []byte
	Filename string

	// Defaults are per-upload forced values (e.g. the uploader), merged over Schema.Defaults.
	Defaults map[string]string
}

// Existing is a stored record and its lifecycle state.
type Existing[T any] struct {
	Record T
	Open   bool
}

// Patch is a record plus the columns an update may touch.
type Patch[T any] struct {
	Record  T
	Columns []string
}

// Store is the persistence side of one feed. All calls of a run share one transaction.
// present always lists the non-key columns the feed carried.
type Store[T any] interface {
	// Snapshot loads every stored record. Open may depend on the carried columns.
	Snapshot(ctx context.Context, present []string) ([]Existing[T], error)
	Insert(ctx context.Context, rows []T, columns []string) error
	Update(ctx context.Context, patches []Patch[T]) error
	// Close ends the lifecycle of records missing from the feed.
	Close(ctx context.Context, rows []T, present []string) error
	Reopen(ctx context.Context, rows []T) error
}

// Engine runs uploads for entity type T.
type Engine[T any] struct {
	txm       tx.Manager
	schema    Schema
	store     Store[T]
	columns   []string
	known     map[string]bool
	lifecycle map[string]bool
}

// NewEngine creates an engine for one feed.
func NewEngine[T any](txm tx.Manager, schema Schema, store Store[T]) *Engine[T] {
	columns := entity.ColumnNames[T]()
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}
	lifecycle := make(map[string]bool, len(schema.LifecycleColumns))
	for _, c := range schema.LifecycleColumns {
		lifecycle[c] = true
	}
	return &Engine[T]{
		txm:       txm,
		schema:    schema,
		store:     store,
		columns:   columns,
		known:     known,
		lifecycle: lifecycle,
	}
}

type feedRecord[T any] struct {
	key     string
	record  T
	present []string // non-key columns with a value in this row
}

// Run parses, validates and applies one upload.
// Warnings come back as a validation AppError, store failures as a database AppError;
// in both cases the returned Result describes the outcome.
func (e *Engine[T]) Run(ctx context.Context, in Input) (Result, error) {
	log := logger.FromContext(ctx).WithComponent("reconcile").With("entity", e.schema.Entity)

	table, err := ParseTable(in.Data, in.Filename)
	if errors.Is(err, errNoHeader) {
		return e.warn("Invalid file", "CSV file has no headers")
	}
	if err != nil {
		return e.warn("Invalid file", err.Error())
	}

	records, present, res, err := e.prepare(table, in.Defaults)
	if err != nil {
		return res, err
	}
	if len(records) == 0 {
		return Result{Message: "Uploaded Successfully", Resolution: "No valid rows found", Type: TypeSuccess}, nil
	}

	var out Result
	err = e.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := e.store.Snapshot(ctx, present)
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		plan := e.partition(records, existing)
		out = plan.result

		if len(plan.inserts) > 0 {
			if err := e.store.Insert(ctx, plan.inserts, plan.insertColumns); err != nil {
				return fmt.Errorf("insert: %w", err)
			}
		}
		if len(plan.updates) > 0 {
			if err := e.store.Update(ctx, plan.updates); err != nil {
				return fmt.Errorf("update: %w", err)
			}
		}
		if len(plan.closes) > 0 {
			if err := e.store.Close(ctx, plan.closes, present); err != nil {
				return fmt.Errorf("close: %w", err)
			}
		}
		if len(plan.reopens) > 0 {
			if err := e.store.Reopen(ctx, plan.reopens); err != nil {
				return fmt.Errorf("reopen: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		message := "Unexpected server error"
		if apperror.IsDuplicate(err) || apperror.HasCode(err, apperror.CodeConflict) {
			message = "Database integrity error"
		}
		log.Errorw("upload rolled back", "error", err)
		res := Result{Message: message, Resolution: rootMessage(err), Type: TypeError}
		return res, apperror.NewDatabase(message, err).WithDetail("type", string(TypeError))
	}

	out.Message = e.schema.Entity + " Uploaded"
	out.Resolution = fmt.Sprintf("Inserted : %d, Updated : %d, Closed : %d, Reopened : %d",
		out.Inserted, out.Updated, out.Closed, out.Reopened)
	out.Type = TypeSuccess

	log.Infow("upload applied",
		"inserted", out.Inserted,
		"updated", out.Updated,
		"unchanged", out.Unchanged,
		"closed", out.Closed,
		"reopened", out.Reopened)
	return out, nil
}

// prepare normalises, decodes and validates every row. The first failure aborts the upload.
func (e *Engine[T]) prepare(table *Table, extra map[string]string) ([]feedRecord[T], []string, Result, error) {
	defaults := make(map[string]string, len(e.schema.Defaults)+len(extra))
	for k, v := range e.schema.Defaults {
		defaults[k] = v
	}
	for k, v := range extra {
		defaults[k] = v
	}

	isKey := make(map[string]bool, len(e.schema.KeyColumns))
	for _, k := range e.schema.KeyColumns {
		isKey[k] = true
	}

	presentSet := make(map[string]bool)
	byKey := make(map[string]int)
	var records []feedRecord[T]

	for _, row := range table.Rows {
		e.normalise(row, defaults)

		var rec T
		label := e.label(row)
		for _, k := range e.schema.KeyColumns {
			if !row.Present(k) {
				res, err := e.warn("Validation failed for "+label, fmt.Sprintf("line %d: missing key column %s", row.Line, k))
				return nil, nil, res, err
			}
		}
		if err := decodeRow(&rec, row); err != nil {
			res, werr := e.warn("Validation failed for "+label, err.Error())
			return nil, nil, res, werr
		}
		if err := validate.Struct(&rec); err != nil {
			res, werr := e.warn("Validation failed for "+label, validationMessage(err))
			return nil, nil, res, werr
		}

		fr := feedRecord[T]{key: e.keyOf(&rec), record: rec}
		for _, c := range e.columns {
			if row.Present(c) && !isKey[c] {
				fr.present = append(fr.present, c)
				presentSet[c] = true
			}
		}

		// A key repeated in the feed keeps its last row.
		if i, seen := byKey[fr.key]; seen {
			records[i] = fr
			continue
		}
		byKey[fr.key] = len(records)
		records = append(records, fr)
	}

	present := make([]string, 0, len(presentSet))
	for _, c := range e.columns {
		if presentSet[c] {
			present = append(present, c)
		}
	}
	return records, present, Result{}, nil
}

func (e *Engine[T]) normalise(row Row, defaults map[string]string) {
	for _, c := range e.schema.Upper {
		if v, ok := row.Values[c]; ok {
			row.Values[c] = strings.ToUpper(v)
		}
	}
	for k, v := range defaults {
		row.Values[k] = v
	}
}

type plan[T any] struct {
	inserts       []T
	insertColumns []string
	updates       []Patch[T]
	closes        []T
	reopens       []T
	result        Result
}

func (e *Engine[T]) partition(records []feedRecord[T], existing []Existing[T]) plan[T] {
	stored := make(map[string]Existing[T], len(existing))
	for _, ex := range existing {
		stored[e.keyOf(&ex.Record)] = ex
	}

	var p plan[T]
	insertCols := make(map[string]bool)
	inFeed := make(map[string]bool, len(records))

	for _, fr := range records {
		inFeed[fr.key] = true
		ex, found := stored[fr.key]
		if !found {
			rec := fr.record
			for _, c := range e.applyInsertDefaults(&rec, fr.present) {
				insertCols[c] = true
			}
			for _, c := range fr.present {
				insertCols[c] = true
			}
			p.inserts = append(p.inserts, rec)
			continue
		}

		reopened := false
		if e.schema.Policy.Reopen && !ex.Open {
			p.reopens = append(p.reopens, ex.Record)
			p.result.Reopened++
			reopened = true
		}

		columns := fr.present
		if reopened {
			columns = e.withoutLifecycle(columns)
		}
		if e.schema.Policy.OnExisting == Update && len(columns) > 0 && e.changed(&fr.record, &ex.Record, columns) {
			p.updates = append(p.updates, Patch[T]{Record: fr.record, Columns: columns})
			p.result.Updated++
			continue
		}
		if !reopened {
			p.result.Unchanged++
		}
	}

	if e.schema.Policy.CloseMissing {
		for _, ex := range existing {
			key := e.keyOf(&ex.Record)
			if !ex.Open || inFeed[key] || e.protected(&ex.Record) {
				continue
			}
			p.closes = append(p.closes, ex.Record)
		}
		p.result.Closed = len(p.closes)
	}

	p.result.Inserted = len(p.inserts)
	p.insertColumns = append(p.insertColumns, e.schema.KeyColumns...)
	for _, c := range e.columns {
		if insertCols[c] {
			p.insertColumns = append(p.insertColumns, c)
		}
	}
	return p
}

// applyInsertDefaults fills blank columns of a new record and returns the columns it set.
func (e *Engine[T]) applyInsertDefaults(rec *T, present []string) []string {
	if len(e.schema.InsertDefaults) == 0 {
		return nil
	}
	has := make(map[string]bool, len(present))
	for _, c := range present {
		has[c] = true
	}
	cols := make([]string, 0, len(e.schema.InsertDefaults))
	for c, v := range e.schema.InsertDefaults {
		if has[c] {
			continue
		}
		field, ok := entity.Field(rec, c)
		if !ok || assign(field, v) != nil {
			continue
		}
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

func (e *Engine[T]) withoutLifecycle(columns []string) []string {
	if len(e.lifecycle) == 0 {
		return columns
	}
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if !e.lifecycle[c] {
			out = append(out, c)
		}
	}
	return out
}

func (e *Engine[T]) changed(incoming, stored *T, columns []string) bool {
	for _, c := range columns {
		a, ok := entity.Field(incoming, c)
		if !ok {
			continue
		}
		b, _ := entity.Field(stored, c)
		if !equalValues(a, b) {
			return true
		}
	}
	return false
}

func (e *Engine[T]) protected(rec *T) bool {
	if e.schema.ProtectedPrefix == "" || len(e.schema.KeyColumns) == 0 {
		return false
	}
	v, ok := entity.Field(rec, e.schema.KeyColumns[0])
	if !ok {
		return false
	}
	if v = indirect(v); !v.IsValid() {
		return false
	}
	return strings.HasPrefix(fmt.Sprint(v.Interface()), e.schema.ProtectedPrefix)
}

// keyOf joins the key column values; composite keys become a tuple string.
func (e *Engine[T]) keyOf(rec *T) string {
	parts := make([]string, len(e.schema.KeyColumns))
	for i, c := range e.schema.KeyColumns {
		v, ok := entity.Field(rec, c)
		if !ok {
			continue
		}
		v = indirect(v)
		if v.IsValid() {
			parts[i] = fmt.Sprint(v.Interface())
		}
	}
	return strings.Join(parts, "\x1f")
}

func (e *Engine[T]) label(row Row) string {
	if len(e.schema.KeyColumns) == 0 {
		return fmt.Sprintf("line %d", row.Line)
	}
	if v, ok := row.Values[e.schema.KeyColumns[0]]; ok {
		return v
	}
	return fmt.Sprintf("line %d", row.Line)
}

func (e *Engine[T]) warn(message, resolution string) (Result, error) {
	res := Result{Message: message, Resolution: resolution, Type: TypeWarning}
	err := apperror.NewValidation(message).
		WithDetail("resolution", resolution).
		WithDetail("type", string(TypeWarning))
	return res, err
}

func indirect(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func validationMessage(err error) string {
	if appErr, ok := apperror.AsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}

// rootMessage returns the innermost error text, which is what the user can act on.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
