package notification

import (
	"context"
	"strings"
	"sync"

	"servicecenter/internal/core/apperror"
	"servicecenter/internal/core/entity"
)

var _ Repository = (*memRepo)(nil)

type memRepo struct {
	mu     sync.Mutex
	staff  map[string]bool
	rows   []Notification
	nextID int64
}

func newMemRepo(staff ...string) *memRepo {
	r := &memRepo{staff: map[string]bool{}}
	for _, name := range staff {
		r.staff[strings.ToLower(name)] = true
	}
	return r
}

func (r *memRepo) Checkpoint() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := append([]Notification(nil), r.rows...)
	next := r.nextID
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.rows, r.nextID = saved, next
	}
}

func (r *memRepo) Create(_ context.Context, n *Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.staff[strings.ToLower(n.AssignedTo)] {
		return apperror.NewConflict("Record is referenced by or references a missing record").
			WithDetail("entity", "notification")
	}
	r.nextID++
	n.ID = entity.Ptr(r.nextID)
	r.rows = append(r.rows, *n)
	return nil
}

func (r *memRepo) ListOpen(_ context.Context, assignee string) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Notification{}
	for _, n := range r.rows {
		if n.Resolved != entity.No {
			continue
		}
		if assignee != "" && !strings.EqualFold(n.AssignedTo, assignee) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *memRepo) CountOpen(ctx context.Context) (int64, error) {
	open, _ := r.ListOpen(ctx, "")
	return int64(len(open)), nil
}

func (r *memRepo) Resolve(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if *r.rows[i].ID == id {
			r.rows[i].Resolved = entity.Yes
			return nil
		}
	}
	return apperror.NewNotFound("notification", id)
}
