package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey_IntegralFloatsMatchIntegers(t *testing.T) {
	assert.Equal(t, "1", Key(int64(1)))
	assert.Equal(t, "1", Key(1.0))
	assert.Equal(t, "1", Key(1))
	assert.Equal(t, "1.5", Key(1.5))
	assert.Equal(t, "Japan", Key([]byte("Japan")))
	assert.Equal(t, "", Key(nil))
}

func TestFloat(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{int64(3), 3, true},
		{2.5, 2.5, true},
		{" 4.25 ", 4.25, true},
		{"n/a", 0, false},
		{"", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, tt := range tests {
		got, ok := Float(tt.in)
		assert.Equal(t, tt.ok, ok, "input %v", tt.in)
		assert.Equal(t, tt.want, got, "input %v", tt.in)
	}
}

func TestCompare_NumbersBeforeText(t *testing.T) {
	assert.Equal(t, -1, Compare(int64(2), int64(10)))
	assert.Equal(t, 1, Compare("b", "a"))
	assert.Equal(t, -1, Compare(int64(99), "a"))
	assert.Equal(t, 0, Compare(1.0, int64(1)))
	// numeric-looking text compares as text
	assert.Equal(t, 1, Compare("2", "10"))
}

func TestQuery_CleanFilter(t *testing.T) {
	assert.Equal(t, "age > 30", Query{Filter: "WHERE age > 30"}.CleanFilter())
	assert.Equal(t, "age > 30", Query{Filter: "  where age > 30"}.CleanFilter())
	assert.Equal(t, "whereabouts = 'x'", Query{Filter: "whereabouts = 'x'"}.CleanFilter())
	assert.Equal(t, "", Query{}.CleanFilter())
}

func TestSchema_Has(t *testing.T) {
	s := Schema{Table: "people", Variables: []Variable{{Name: "age", Kind: KindNumeric}, {Name: "country", Kind: KindCategorical}}}
	_, ok := s.Has("age", "country")
	assert.True(t, ok)
	missing, ok := s.Has("age", "height")
	assert.False(t, ok)
	assert.Equal(t, "height", missing)
}
