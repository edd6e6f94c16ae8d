package grc

import (
	"context"
	"sort"
	"sync"

	"servicecenter/internal/core/apperror"
	"servicecenter/internal/core/entity"
	"servicecenter/internal/core/entity/entitytest"
	"servicecenter/internal/domain"
	"servicecenter/internal/domain/filter"
	"servicecenter/internal/domain/reconcile"
	"servicecenter/internal/domain/report"
)

var _ Repository = (*memRepo)(nil)

type memRepo struct {
	mu       sync.Mutex
	lines    map[Key]Line
	disputes []Dispute
	history  []History
	fail     error
}

func newMemRepo(seed ...Line) *memRepo {
	r := &memRepo{lines: make(map[Key]Line)}
	for _, l := range seed {
		r.lines[l.Key()] = l
	}
	return r
}

func (r *memRepo) Checkpoint() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make(map[Key]Line, len(r.lines))
	for k, v := range r.lines {
		lines[k] = v
	}
	disputes := append([]Dispute(nil), r.disputes...)
	history := append([]History(nil), r.history...)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.lines, r.disputes, r.history = lines, disputes, history
	}
}

func (r *memRepo) sorted(match func(*Line) bool) []Line {
	var out []Line
	for _, l := range r.lines {
		if match(&l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GRCNumber != out[j].GRCNumber {
			return out[i].GRCNumber < out[j].GRCNumber
		}
		return out[i].SpareCode < out[j].SpareCode
	})
	return out
}

func (r *memRepo) Lock(_ context.Context, key Key) (*Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lines[key]
	if !ok {
		return nil, apperror.NewNotFoundCode(apperror.CodeSpareNotFound, "grc line", key)
	}
	return &l, nil
}

func (r *memRepo) LockMany(_ context.Context, keys []Key) ([]Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Line
	for _, k := range keys {
		if l, ok := r.lines[k]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memRepo) Update(_ context.Context, key Key, set map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	l, ok := r.lines[key]
	if !ok {
		return apperror.NewNotFoundCode(apperror.CodeSpareNotFound, "grc line", key)
	}
	if err := entitytest.Apply(&l, set); err != nil {
		return err
	}
	r.lines[key] = l
	return nil
}

func (r *memRepo) NotReceivedNumbers(context.Context) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[int]bool{}
	var out []int
	for _, l := range r.sorted(func(l *Line) bool { return l.ReceiveDate == nil }) {
		if !seen[l.GRCNumber] {
			seen[l.GRCNumber] = true
			out = append(out, l.GRCNumber)
		}
	}
	return out, nil
}

func (r *memRepo) NotReceived(_ context.Context, grcNumber int) ([]Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(l *Line) bool { return l.GRCNumber == grcNumber && l.ReceiveDate == nil }), nil
}

func (r *memRepo) OpenByDivision(_ context.Context, division string) ([]Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(l *Line) bool { return entity.Deref(l.Division) == division && l.Status == entity.No }), nil
}

func (r *memRepo) ListLines(_ context.Context, set *filter.Set, page domain.Page) (domain.ListResult[Line], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return domain.ListResult[Line]{}, r.fail
	}
	return window(r.sorted(func(l *Line) bool { return set.Match(entity.Columns(l)) }), page), nil
}

func (r *memRepo) ListHistory(_ context.Context, set *filter.Set, page domain.Page) (domain.ListResult[History], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []History
	for _, h := range r.history {
		if set.Match(entity.Columns(&h)) {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].GRCNumber < out[j].GRCNumber })
	return window(out, page), nil
}

func (r *memRepo) CreateDispute(_ context.Context, d *Dispute) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disputes = append(r.disputes, *d)
	return nil
}

func (r *memRepo) CreateHistory(_ context.Context, rows []History) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.history = append(r.history, rows...)
	return nil
}

func window[T any](all []T, page domain.Page) domain.ListResult[T] {
	total := int64(len(all))
	start := min(page.Offset, len(all))
	end := len(all)
	if page.Limit > 0 {
		end = min(start+page.Limit, len(all))
	}
	return domain.ListResult[T]{Items: all[start:end], TotalCount: &total, Limit: page.Limit, Offset: page.Offset}
}

// memFeed is the reconcile.Store view of a memRepo.
type memFeed struct{ *memRepo }

var _ reconcile.Store[Line] = memFeed{}

func (r memFeed) Snapshot(context.Context, []string) ([]reconcile.Existing[Line], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]reconcile.Existing[Line], 0, len(r.lines))
	for _, l := range r.lines {
		out = append(out, reconcile.Existing[Line]{Record: l, Open: l.Status == entity.No})
	}
	return out, nil
}

func (r memFeed) Insert(_ context.Context, rows []Line, _ []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range rows {
		r.lines[l.Key()] = l
	}
	return nil
}

func (r memFeed) Update(_ context.Context, patches []reconcile.Patch[Line]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range patches {
		cols := entity.Columns(&p.Record)
		set := make(map[string]any, len(p.Columns))
		for _, c := range p.Columns {
			set[c] = cols[c]
		}
		stored := r.lines[p.Record.Key()]
		if err := entitytest.Apply(&stored, set); err != nil {
			return err
		}
		r.lines[p.Record.Key()] = stored
	}
	return nil
}

func (r memFeed) setStatus(rows []Line, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range rows {
		stored := r.lines[l.Key()]
		stored.Status = status
		r.lines[l.Key()] = stored
	}
}

func (r memFeed) Close(_ context.Context, rows []Line, _ []string) error {
	r.setStatus(rows, entity.Yes)
	return nil
}

func (r memFeed) Reopen(_ context.Context, rows []Line) error {
	r.setStatus(rows, entity.No)
	return nil
}

type recordingRenderer struct {
	got []report.Challan
}

func (r *recordingRenderer) Render(_ context.Context, c report.Challan) ([]byte, error) {
	r.got = append(r.got, c)
	return []byte("%PDF-1.3"), nil
}
