package customer

import (
	"context"
	"sort"
	"sync"

	"servicecenter/internal/core/apperror"
	"servicecenter/internal/core/entity/entitytest"
)

var _ Repository = (*memRepo)(nil)

type memRepo struct {
	mu    sync.Mutex
	rows  map[string]Customer
	taken map[string]bool // codes that collide once on Create
}

func newMemRepo(seed ...Customer) *memRepo {
	r := &memRepo{rows: make(map[string]Customer), taken: make(map[string]bool)}
	for _, c := range seed {
		r.rows[c.Code] = c
	}
	return r
}

func (r *memRepo) Checkpoint() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := make(map[string]Customer, len(r.rows))
	for k, v := range r.rows {
		saved[k] = v
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.rows = saved
	}
}

func (r *memRepo) Create(_ context.Context, c *Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[c.Code]; ok || r.taken[c.Code] {
		delete(r.taken, c.Code)
		return apperror.NewDuplicate("customer", "customers_pkey", c.Code)
	}
	r.rows[c.Code] = *c
	return nil
}

func (r *memRepo) GetByCode(_ context.Context, code string) (*Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[code]
	if !ok {
		return nil, apperror.NewNotFound("customer", code)
	}
	return &c, nil
}

func (r *memRepo) GetByName(_ context.Context, name string) (*Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, apperror.NewNotFound("customer", name)
}

func (r *memRepo) NameExists(ctx context.Context, name string) (bool, error) {
	_, err := r.GetByName(ctx, name)
	if apperror.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (r *memRepo) Update(_ context.Context, code string, set map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[code]
	if !ok {
		return apperror.NewNotFound("customer", code)
	}
	if err := entitytest.Apply(&c, set); err != nil {
		return err
	}
	r.rows[code] = c
	return nil
}

func (r *memRepo) Names(context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.rows))
	for _, c := range r.rows {
		out = append(out, c.Name)
	}
	sort.Strings(out)
	return out, nil
}
