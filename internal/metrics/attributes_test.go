package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeClassYear(t *testing.T) {
	tests := map[string]string{
		"Fr":   Freshman,
		" so ": Sophomore,
		"JR":   Junior,
		"Sr":   Senior,
		"Gr":   Unknown,
		"":     Unknown,
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeClassYear(in), in)
	}

	assert.Less(t, ClassYearOrder(Freshman), ClassYearOrder(Senior))
	assert.Equal(t, 99, ClassYearOrder(Unknown))
}

func TestParseHeight(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"6-5", 77, true},
		{" 7-0 ", 84, true},
		{"5-11", 71, true},
		{"77.25", 77.25, true},
		{"", 0, false},
		{"tall", 0, false},
		{"6-x", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseHeight(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestStandardizePosition(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"PG", "G", true},
		{"Combo G", "G", true},
		{"Wing G", "G", true},
		{"PF/C", "F", true},
		{"Wing F", "F", true},
		{"Stretch 4", "F", true},
		{"F", "F", true},
		{"F-C", "F", true},
		{"C", "C", true},
		{"G-F", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := StandardizePosition(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
