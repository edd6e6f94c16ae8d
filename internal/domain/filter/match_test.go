package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSet_Match(t *testing.T) {
	name := "Ravi Kumar"
	row := map[string]any{
		"division":      "FANS",
		"customer_name": &name,
		"customer_city": (*string)(nil),
		"grc_number":    1204,
		"grc_date":      time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name string
		set  *Set
		want bool
	}{
		{"empty set matches", new(Set), true},
		{"eq", new(Set).Eq("division", "FANS"), true},
		{"eq miss", new(Set).Eq("division", "PUMP"), false},
		{"contains through pointer", new(Set).Contains("customer_name", "kumar"), true},
		{"null column never compares", new(Set).Eq("customer_city", "X"), false},
		{"is null", new(Set).Add("customer_city", IsNull, nil), true},
		{"in", new(Set).Add("division", InList, []string{"PUMP", "FANS"}), true},
		{"not in", new(Set).Add("division", NotInList, []string{"FANS"}), false},
		{"numeric range", new(Set).Between("grc_number", 1200, 1210), true},
		{"date range", new(Set).Between("grc_date", time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC), nil), false},
		{"prefix", new(Set).Add("division", NotHasPrefix, "F"), false},
		{"or group", new(Set).Any(
			Item{Field: "division", Operator: Equal, Value: "PUMP"},
			Item{Field: "customer_name", Operator: Contains, Value: "ravi"},
		), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.set.Match(row))
		})
	}
}

func TestSet_MatchIsOrderIndependent(t *testing.T) {
	row := map[string]any{"a": "x", "b": "y"}
	ab := new(Set).Eq("a", "x").Eq("b", "z")
	ba := new(Set).Eq("b", "z").Eq("a", "x")
	assert.Equal(t, ab.Match(row), ba.Match(row))
}
