package numerator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicecenter/internal/core/apperror"
	"servicecenter/internal/core/tx/txtest"
)

type rowStore struct {
	rows []string
}

func (s *rowStore) Checkpoint() func() {
	saved := append([]string(nil), s.rows...)
	return func() { s.rows = saved }
}

func TestCreateWithRetry_FirstAttempt(t *testing.T) {
	store := &rowStore{}
	txm := txtest.New(store)
	gen := &MockGenerator{}

	code, err := CreateWithRetry(context.Background(), txm, gen, Complaint, func(ctx context.Context, code string) error {
		store.rows = append(store.rows, code)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "N00001", code)
	assert.Equal(t, []string{"N00001"}, store.rows)
	assert.Equal(t, 1, txm.Committed)
}

func TestCreateWithRetry_RecoversFromCollision(t *testing.T) {
	store := &rowStore{}
	txm := txtest.New(store)
	gen := &MockGenerator{}
	attempts := 0

	code, err := CreateWithRetry(context.Background(), txm, gen, Complaint, func(ctx context.Context, code string) error {
		attempts++
		store.rows = append(store.rows, code)
		if attempts == 1 {
			return apperror.NewDuplicate("complaint", "complaint_number", code)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "N00002", code)
	assert.Equal(t, []string{"N00002"}, store.rows)
	assert.Equal(t, 1, txm.RolledBack)
}

func TestCreateWithRetry_GivesUpAfterThreeAttempts(t *testing.T) {
	store := &rowStore{}
	txm := txtest.New(store)
	gen := &MockGenerator{
		NextFunc: func(ctx context.Context, family Family) (string, error) {
			return "N00001", nil
		},
	}
	attempts := 0

	code, err := CreateWithRetry(context.Background(), txm, gen, Complaint, func(ctx context.Context, code string) error {
		attempts++
		store.rows = append(store.rows, code)
		return apperror.NewDuplicate("complaint", "complaint_number", code)
	})

	require.Error(t, err)
	assert.Empty(t, code)
	assert.True(t, apperror.HasCode(err, apperror.CodeIdentifierGenerationFailed))
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, gen.Calls)
	assert.Empty(t, store.rows)
	assert.Equal(t, 3, txm.RolledBack)
}

func TestCreateWithRetry_OtherErrorsStopImmediately(t *testing.T) {
	txm := txtest.New()
	gen := &MockGenerator{}
	boom := errors.New("boom")
	attempts := 0

	_, err := CreateWithRetry(context.Background(), txm, gen, Customer, func(ctx context.Context, code string) error {
		attempts++
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
}
