package auth

import (
	"context"
	"strings"
	"sync"

	"servicecenter/internal/core/apperror"
	"servicecenter/internal/core/entity/entitytest"
)

var _ UserRepository = (*memUsers)(nil)

type memUsers struct {
	mu   sync.Mutex
	rows map[string]User
}

func newMemUsers(seed ...User) *memUsers {
	r := &memUsers{rows: make(map[string]User)}
	for _, u := range seed {
		r.rows[u.Username] = u
	}
	return r
}

func (r *memUsers) Checkpoint() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := make(map[string]User, len(r.rows))
	for k, v := range r.rows {
		saved[k] = v
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.rows = saved
	}
}

func (r *memUsers) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[u.Username]; ok {
		return apperror.NewDuplicate("user", "users_pkey", u.Username)
	}
	r.rows[u.Username] = *u
	return nil
}

func (r *memUsers) GetActive(_ context.Context, username string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if strings.EqualFold(u.Username, username) && u.Active() {
			return &u, nil
		}
	}
	return nil, apperror.NewNotFoundCode(apperror.CodeUserNotFound, "user", username)
}

func (r *memUsers) Update(_ context.Context, username string, set map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[username]
	if !ok {
		return apperror.NewNotFoundCode(apperror.CodeUserNotFound, "user", username)
	}
	if err := entitytest.Apply(&u, set); err != nil {
		return err
	}
	r.rows[username] = u
	return nil
}
