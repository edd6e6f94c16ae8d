// Package entity provides building blocks shared by all persisted records.
package entity

import "time"

// Flag values used by every Y/N column of the schema.
const (
	Yes = "Y"
	No  = "N"
)

// Audit contains the user stamps written on create and update.
type Audit struct {
	CreatedBy *string    `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy *string    `db:"updated_by" json:"updated_by,omitempty"`
	CreatedAt *time.Time `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// StampCreate fills creation stamps.
func (a *Audit) StampCreate(username string, now time.Time) {
	a.CreatedBy = &username
	a.CreatedAt = &now
}

// StampUpdate fills modification stamps.
func (a *Audit) StampUpdate(username string, now time.Time) {
	a.UpdatedBy = &username
	a.UpdatedAt = &now
}

// Ptr returns a pointer to v. Handy for optional columns.
func Ptr[T any](v T) *T {
	return &v
}

// Deref returns the pointed value or the zero value.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// DateOf drops the clock part of t, keeping its location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
