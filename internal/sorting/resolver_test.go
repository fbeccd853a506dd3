package sorting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabstat/domain/core"
	"tabstat/domain/design"
)

func items(values ...any) []Item {
	out := make([]Item, len(values))
	for i, v := range values {
		out[i] = NewItem(v, "", 0)
	}
	return out
}

func TestResolve_CustomAppendsUnrankedInInputOrder(t *testing.T) {
	orders := design.CustomOrders{"letter": {"B", "A"}}

	got, err := Resolve("letter", design.SortCustom, items("A", "B", "C"), orders)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C"}, Keys(got))

	got, err = Resolve("letter", design.SortCustom, items("D", "A", "C", "B"), orders)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "D", "C"}, Keys(got))
}

func TestResolve_CustomWithoutListIsConfigurationError(t *testing.T) {
	_, err := Resolve("letter", design.SortCustom, items("A"), design.CustomOrders{"other": {"x"}})
	require.Error(t, err)
	assert.True(t, core.IsConfigurationError(err))
	assert.ErrorIs(t, err, core.ErrMissingSortOrder)
}

func TestResolve_CustomMatchesNumericKeys(t *testing.T) {
	orders := design.CustomOrders{"rating": {"3", "1", "2"}}
	got, err := Resolve("rating", design.SortCustom, items(int64(1), 2.0, int64(3)), orders)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1", "2"}, Keys(got))
}

func TestResolve_ByValueIsNumericAware(t *testing.T) {
	got, err := Resolve("age_group", design.SortByValue, items(int64(10), int64(2), int64(33), "unknown"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "10", "33", "unknown"}, Keys(got))

	got, err = Resolve("country", design.SortByValue, items("USA", "Japan", "NZ"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Japan", "NZ", "USA"}, Keys(got))
}

func TestResolve_ByLabelIgnoresEncoding(t *testing.T) {
	in := []Item{
		NewItem(int64(1), "Japan", 0),
		NewItem(int64(2), "Italy", 0),
		NewItem(int64(3), "Germany", 0),
	}
	got, err := Resolve("country", design.SortByLabel, in, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2", "1"}, Keys(got))
}

func TestResolve_ByFrequency(t *testing.T) {
	in := []Item{NewItem("a", "", 5), NewItem("b", "", 9), NewItem("c", "", 5), NewItem("d", "", 1)}

	inc, err := Resolve("v", design.SortIncreasing, in, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "a", "c", "b"}, Keys(inc))

	dec, err := Resolve("v", design.SortDecreasing, in, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c", "d"}, Keys(dec))
}

func TestResolve_DeterministicAndNonMutating(t *testing.T) {
	in := items("c", "a", "b")
	first, err := Resolve("v", design.SortByValue, in, nil)
	require.NoError(t, err)
	second, err := Resolve("v", design.SortByValue, in, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"c", "a", "b"}, Keys(in))
}

func TestResolve_UnknownOrder(t *testing.T) {
	_, err := Resolve("v", design.SortOrder("SIDEWAYS"), items("a"), nil)
	assert.True(t, core.IsConfigurationError(err))
}
