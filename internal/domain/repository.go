// Package domain holds types shared by the domain services.
package domain

// Pagination defaults.
const (
	DefaultLimit = 50
	MaxLimit     = 1000
)

// Page is a limit/offset window.
type Page struct {
	Limit  int `form:"limit" json:"limit"`
	Offset int `form:"offset" json:"offset"`

	// WithTotal requests the COUNT(*) under the same filters.
	WithTotal bool `form:"return_total" json:"-"`
}

// Normalize clamps the window; def is used when Limit is unset.
func (p Page) Normalize(def int) Page {
	if p.Limit <= 0 {
		p.Limit = def
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T    `json:"items"`
	TotalCount *int64 `json:"totalCount,omitempty"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
}
