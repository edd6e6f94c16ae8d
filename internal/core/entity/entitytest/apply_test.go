package entitytest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicecenter/internal/core/entity"
)

type record struct {
	entity.Audit
	Code string  `db:"code"`
	Qty  int     `db:"qty"`
	Note *string `db:"note"`
}

func TestApply(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	note := "x"
	rec := record{Note: &note}

	require.NoError(t, Apply(&rec, map[string]any{
		"code":       "SP1",
		"qty":        int64(3),
		"updated_by": "asha",
		"updated_at": now,
		"note":       nil,
	}))

	assert.Equal(t, "SP1", rec.Code)
	assert.Equal(t, 3, rec.Qty)
	assert.Equal(t, "asha", *rec.UpdatedBy)
	assert.Equal(t, now, *rec.UpdatedAt)
	assert.Nil(t, rec.Note)

	assert.Error(t, Apply(&rec, map[string]any{"missing": 1}))
	assert.Error(t, Apply(&rec, map[string]any{"qty": "three"}))
}
