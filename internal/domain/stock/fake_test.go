package stock

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"servicecenter/internal/core/apperror"
	"servicecenter/internal/core/entity"
	"servicecenter/internal/core/entity/entitytest"
	"servicecenter/internal/domain"
	"servicecenter/internal/domain/filter"
	"servicecenter/internal/domain/reconcile"
)

var _ Repository = (*memRepo)(nil)

type memRepo struct {
	mu        sync.Mutex
	items     map[string]Item
	indents   []Indent
	movements []Movement
	fail      error
}

func newMemRepo(seed ...Item) *memRepo {
	r := &memRepo{items: make(map[string]Item)}
	for _, it := range seed {
		r.items[it.SpareCode] = it
	}
	return r
}

func (r *memRepo) Checkpoint() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make(map[string]Item, len(r.items))
	for k, v := range r.items {
		items[k] = v
	}
	indents := append([]Indent(nil), r.indents...)
	movements := append([]Movement(nil), r.movements...)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.items, r.indents, r.movements = items, indents, movements
	}
}

func (r *memRepo) Get(_ context.Context, code string) (*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[code]
	if !ok {
		return nil, apperror.NewNotFoundCode(apperror.CodeSpareNotFound, "spare", code)
	}
	return &it, nil
}

func (r *memRepo) Lock(ctx context.Context, code string) (*Item, error) {
	return r.Get(ctx, code)
}

func (r *memRepo) Update(_ context.Context, code string, set map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	it, ok := r.items[code]
	if !ok {
		return apperror.NewNotFoundCode(apperror.CodeSpareNotFound, "spare", code)
	}
	if err := entitytest.Apply(&it, set); err != nil {
		return err
	}
	r.items[code] = it
	return nil
}

func (r *memRepo) sorted(match func(*Item) bool) []Item {
	var out []Item
	for _, it := range r.items {
		if match(&it) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SpareCode < out[j].SpareCode })
	return out
}

func (r *memRepo) List(_ context.Context, set *filter.Set, page domain.Page) (domain.ListResult[Item], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return domain.ListResult[Item]{}, r.fail
	}
	all := r.sorted(func(it *Item) bool { return set.Match(entity.Columns(it)) })
	return window(all, page), nil
}

func (r *memRepo) Catalog(_ context.Context, division string) ([]CatalogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []CatalogEntry
	for _, it := range r.sorted(func(it *Item) bool { return division == "" || entity.Deref(it.Division) == division }) {
		out = append(out, CatalogEntry{SpareCode: it.SpareCode, SpareDescription: entity.Deref(it.SpareDescription)})
	}
	return out, nil
}

func (r *memRepo) PendingIndent(_ context.Context, division string) ([]Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(it *Item) bool {
		return entity.Deref(it.Division) == division && entity.Deref(it.IndentQty) > 0
	}), nil
}

func (r *memRepo) ResetIndent(_ context.Context, division string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return 0, r.fail
	}
	var n int64
	for k, it := range r.items {
		if entity.Deref(it.Division) == division {
			it.IndentQty = entity.Ptr(0)
			r.items[k] = it
			n++
		}
	}
	return n, nil
}

func (r *memRepo) CreateIndents(_ context.Context, lines []Indent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range lines {
		for _, existing := range r.indents {
			if existing.IndentNumber == l.IndentNumber && existing.SpareCode == l.SpareCode {
				return apperror.NewDuplicate("indent", "indent_number", l.IndentNumber)
			}
		}
	}
	r.indents = append(r.indents, lines...)
	return nil
}

func (r *memRepo) ListIndents(_ context.Context, set *filter.Set, page domain.Page) (domain.ListResult[Indent], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []Indent
	for _, l := range r.indents {
		if set.Match(entity.Columns(&l)) {
			all = append(all, l)
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].SpareCode < all[j].SpareCode })
	return window(all, page), nil
}

func (r *memRepo) CreateMovement(_ context.Context, m *Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, *m)
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

var _ reconcile.Store[Item] = memFeed{}

func (r memFeed) Snapshot(_ context.Context, present []string) ([]reconcile.Existing[Item], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]reconcile.Existing[Item], 0, len(r.items))
	for _, it := range r.items {
		out = append(out, reconcile.Existing[Item]{Record: it, Open: holdsCarried(&it, present)})
	}
	return out, nil
}

// holdsCarried reports whether any carried feed column of it is non-zero.
func holdsCarried(it *Item, present []string) bool {
	carried := "," + strings.Join(present, ",") + ","
	cols := entity.Columns(it)
	for _, c := range FeedColumns {
		if !strings.Contains(carried, ","+c+",") {
			continue
		}
		switch v := cols[c].(type) {
		case *int:
			if entity.Deref(v) != 0 {
				return true
			}
		case *decimal.Decimal:
			if v != nil && !v.IsZero() {
				return true
			}
		}
	}
	return false
}

func (r memFeed) Insert(_ context.Context, rows []Item, _ []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range rows {
		r.items[it.SpareCode] = it
	}
	return nil
}

func (r memFeed) Update(_ context.Context, patches []reconcile.Patch[Item]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	for _, p := range patches {
		cols := entity.Columns(&p.Record)
		set := make(map[string]any, len(p.Columns))
		for _, c := range p.Columns {
			set[c] = cols[c]
		}
		stored := r.items[p.Record.SpareCode]
		if err := entitytest.Apply(&stored, set); err != nil {
			return err
		}
		r.items[p.Record.SpareCode] = stored
	}
	return nil
}

func (r memFeed) Close(_ context.Context, rows []Item, present []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	carried := "," + strings.Join(present, ",") + ","
	set := map[string]any{}
	for _, c := range FeedColumns {
		if strings.Contains(carried, ","+c+",") {
			set[c] = 0
		}
	}
	for _, it := range rows {
		stored := r.items[it.SpareCode]
		if err := entitytest.Apply(&stored, set); err != nil {
			return err
		}
		r.items[it.SpareCode] = stored
	}
	return nil
}

func (r memFeed) Reopen(context.Context, []Item) error { return nil }
