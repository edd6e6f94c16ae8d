package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRecord struct {
	Audit
	Code     string  `db:"code"`
	Name     *string `db:"name"`
	Quantity int     `db:"qty"`
	Ignored  string  `db:"-"`
	NoTag    string
}

func TestColumnNames_Embedded(t *testing.T) {
	cols := ColumnNames[mockRecord]()

	assert.Equal(t, []string{
		"created_by", "updated_by", "created_at", "updated_at", "code", "name", "qty",
	}, cols)
}

func TestColumns(t *testing.T) {
	now := time.Now().UTC()
	rec := mockRecord{Code: "SP-1", Name: Ptr("FAN MOTOR"), Quantity: 4, Ignored: "x"}
	rec.StampCreate("ADMIN", now)

	m := Columns(&rec)

	assert.Equal(t, "SP-1", m["code"])
	assert.Equal(t, "FAN MOTOR", *m["name"].(*string))
	assert.Equal(t, 4, m["qty"])
	assert.Equal(t, "ADMIN", *m["created_by"].(*string))
	assert.Equal(t, &now, m["created_at"])
	assert.NotContains(t, m, "-")
	assert.Len(t, m, 7)
}

func TestField_SetsEmbeddedValue(t *testing.T) {
	var rec mockRecord

	f, ok := Field(&rec, "qty")
	require.True(t, ok)
	f.SetInt(9)
	assert.Equal(t, 9, rec.Quantity)

	_, ok = Field(&rec, "missing")
	assert.False(t, ok)

	_, ok = Field(rec, "qty")
	assert.False(t, ok, "non-pointer values are not addressable")
}

func TestAssignedColumns_DropsNilPointers(t *testing.T) {
	rec := mockRecord{Code: "SP-2"}

	m := AssignedColumns(&rec)

	assert.Equal(t, map[string]any{"code": "SP-2", "qty": 0}, m)
}
