package parameter

import (
	"context"
	"sync"

	"servicecenter/internal/core/apperror"
	corenumerator "servicecenter/internal/core/numerator"
)

var (
	_ Repository = (*memRepo)(nil)
	_ Counters   = (*memCounters)(nil)
)

type memRepo struct {
	mu  sync.Mutex
	row *Parameters
}

func (r *memRepo) Checkpoint() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := r.row
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.row = saved
	}
}

func (r *memRepo) Get(context.Context) (*Parameters, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.row == nil {
		return nil, apperror.NewNotFound("parameters", "settings")
	}
	p := *r.row
	return &p, nil
}

func (r *memRepo) Save(_ context.Context, p *Parameters) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := *p
	saved.RFRNumber = ""
	r.row = &saved
	return nil
}

type memCounters struct {
	mu     sync.Mutex
	values map[string]int64
	err    error
}

func (c *memCounters) Checkpoint() func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	saved := make(map[string]int64, len(c.values))
	for k, v := range c.values {
		saved[k] = v
	}
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.values = saved
	}
}

func (c *memCounters) Counter(_ context.Context, family corenumerator.Family) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[family.Name], nil
}

func (c *memCounters) SetCounter(_ context.Context, family corenumerator.Family, value int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.values == nil {
		c.values = map[string]int64{}
	}
	c.values[family.Name] = value
	return nil
}
