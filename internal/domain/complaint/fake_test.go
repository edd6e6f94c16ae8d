package complaint

import (
	"context"
	"errors"
	"sort"
	"sync"

	"servicecenter/internal/core/apperror"
	"servicecenter/internal/core/entity"
	"servicecenter/internal/core/entity/entitytest"
	"servicecenter/internal/domain"
	"servicecenter/internal/domain/filter"
	"servicecenter/internal/domain/mail"
	"servicecenter/internal/domain/reconcile"
)

var _ Repository = (*memRepo)(nil)

// memRepo is an in-memory Repository.
type memRepo struct {
	mu    sync.Mutex
	rows  map[string]Complaint
	fail  error
	taken map[string]bool // numbers that collide once on Create
}

func newMemRepo(seed ...Complaint) *memRepo {
	r := &memRepo{rows: make(map[string]Complaint), taken: make(map[string]bool)}
	for _, c := range seed {
		r.rows[c.ComplaintNumber] = c
	}
	return r
}

func (r *memRepo) Checkpoint() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := make(map[string]Complaint, len(r.rows))
	for k, v := range r.rows {
		saved[k] = v
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.rows = saved
	}
}

func (r *memRepo) Create(_ context.Context, c *Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	if _, ok := r.rows[c.ComplaintNumber]; ok || r.taken[c.ComplaintNumber] {
		delete(r.taken, c.ComplaintNumber)
		return apperror.NewDuplicate("complaint", "complaint_number", c.ComplaintNumber)
	}
	r.rows[c.ComplaintNumber] = *c
	return nil
}

func (r *memRepo) GetByNumber(_ context.Context, number string) (*Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[number]
	if !ok {
		return nil, apperror.NewNotFound("complaint", number)
	}
	return &c, nil
}

func (r *memRepo) Update(_ context.Context, number string, set map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	c, ok := r.rows[number]
	if !ok {
		return apperror.NewNotFound("complaint", number)
	}
	if err := entitytest.Apply(&c, set); err != nil {
		return err
	}
	r.rows[number] = c
	return nil
}

func (r *memRepo) List(_ context.Context, set *filter.Set, page domain.Page) (domain.ListResult[Complaint], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return domain.ListResult[Complaint]{}, r.fail
	}
	var all []Complaint
	for _, c := range r.rows {
		if set.Match(entity.Columns(&c)) {
			all = append(all, c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ComplaintNumber < all[j].ComplaintNumber })
	total := int64(len(all))
	start := min(page.Offset, len(all))
	end := len(all)
	if page.Limit > 0 {
		end = min(start+page.Limit, len(all))
	}
	return domain.ListResult[Complaint]{Items: all[start:end], TotalCount: &total, Limit: page.Limit, Offset: page.Offset}, nil
}

func (r *memRepo) Reallocate(_ context.Context, from, to string, numbers []string, by string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[string]bool, len(numbers))
	for _, n := range numbers {
		want[n] = true
	}
	var n int64
	for k, c := range r.rows {
		if c.Technician != from || c.IsClosed() || (len(numbers) > 0 && !want[k]) {
			continue
		}
		c.Technician = to
		c.UpdatedBy = &by
		r.rows[k] = c
		n++
	}
	return n, nil
}

func (r *memRepo) SetActionHead(_ context.Context, numbers []string, from, to, by string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, k := range numbers {
		c, ok := r.rows[k]
		if !ok || c.ActionHead != from || c.IsClosed() {
			continue
		}
		c.ActionHead = to
		c.UpdatedBy = &by
		r.rows[k] = c
		n++
	}
	return n, nil
}

// memFeed is the reconcile.Store view of a memRepo.
type memFeed struct{ *memRepo }

var _ reconcile.Store[Complaint] = memFeed{}

func (r memFeed) Snapshot(context.Context, []string) ([]reconcile.Existing[Complaint], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]reconcile.Existing[Complaint], 0, len(r.rows))
	for _, c := range r.rows {
		out = append(out, reconcile.Existing[Complaint]{Record: c, Open: !c.IsClosed()})
	}
	return out, nil
}

func (r memFeed) Insert(_ context.Context, rows []Complaint, _ []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	for _, c := range rows {
		r.rows[c.ComplaintNumber] = c
	}
	return nil
}

func (r memFeed) Update(context.Context, []reconcile.Patch[Complaint]) error {
	return errors.New("complaint feed never updates")
}

func (r memFeed) Close(_ context.Context, rows []Complaint, _ []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range rows {
		stored := r.rows[c.ComplaintNumber]
		stored.ComplaintStatus = StatusClosed
		stored.FinalStatus = entity.Yes
		r.rows[c.ComplaintNumber] = stored
	}
	return nil
}

func (r memFeed) Reopen(context.Context, []Complaint) error { return nil }

type recordingSender struct {
	sent []mail.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg mail.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}
