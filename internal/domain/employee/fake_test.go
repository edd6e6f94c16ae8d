package employee

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"servicecenter/internal/core/apperror"
	"servicecenter/internal/core/entity"
)

var _ Repository = (*memRepo)(nil)

type memRepo struct {
	mu     sync.Mutex
	rows   []Employee
	nextID int64
}

func newMemRepo(seed ...Employee) *memRepo {
	r := &memRepo{}
	for _, e := range seed {
		r.nextID++
		e.ID = entity.Ptr(r.nextID)
		r.rows = append(r.rows, e)
	}
	return r
}

func (r *memRepo) Checkpoint() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := append([]Employee(nil), r.rows...)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.rows = saved
	}
}

func (r *memRepo) byName(name string) *Employee {
	for i := range r.rows {
		if strings.EqualFold(r.rows[i].Name, name) {
			return &r.rows[i]
		}
	}
	return nil
}

func (r *memRepo) Create(_ context.Context, e *Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byName(e.Name) != nil {
		return apperror.NewDuplicate("employee", "employees_name_key", e.Name)
	}
	r.nextID++
	e.ID = entity.Ptr(r.nextID)
	r.rows = append(r.rows, *e)
	return nil
}

func (r *memRepo) GetActive(_ context.Context, name string) (*Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.byName(name)
	if e == nil || e.IsActive != entity.Yes {
		return nil, apperror.NewNotFoundCode(apperror.CodeEmployeeNotFound, "employee", name)
	}
	out := *e
	return &out, nil
}

func (r *memRepo) ListActive(_ context.Context, roles []string) ([]Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Summary
	for _, e := range r.rows {
		if e.IsActive == entity.Yes && slices.Contains(roles, e.Role) {
			out = append(out, Summary{Name: e.Name, Role: e.Role, PhoneNumber: e.PhoneNumber})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := slices.Index(RoleOrder, out[i].Role), slices.Index(RoleOrder, out[j].Role)
		if ri != rj {
			return ri < rj
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *memRepo) Deactivate(_ context.Context, id int64, leavingDate time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if entity.Deref(r.rows[i].ID) == id {
			r.rows[i].IsActive = entity.No
			r.rows[i].LeavingDate = &leavingDate
			return nil
		}
	}
	return apperror.NewNotFoundCode(apperror.CodeEmployeeNotFound, "employee", id)
}

// fakeAccounts records login account calls.
type fakeAccounts struct {
	created     []string
	deactivated []string
	failCreate  error
	missing     bool
}

func (a *fakeAccounts) CreateUser(_ context.Context, username, _, role string) error {
	if a.failCreate != nil {
		return a.failCreate
	}
	a.created = append(a.created, username+"/"+role)
	return nil
}

func (a *fakeAccounts) DeactivateUser(_ context.Context, username string) error {
	if a.missing {
		return apperror.NewNotFoundCode(apperror.CodeUserNotFound, "user", username)
	}
	a.deactivated = append(a.deactivated, username)
	return nil
}
