package sortorders

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabstat/domain/core"
)

func TestSortOrdersFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
country: [New Zealand, Japan, Italy]
age_group:
  - "<20"
  - 20-29
rating: [5, 4, 3.0]
`), 0o644))

	orders, err := FileSource{}.SortOrders(context.Background(), path)
	require.NoError(t, err)

	keys, ok := orders.For("country")
	require.True(t, ok)
	assert.Equal(t, []string{"New Zealand", "Japan", "Italy"}, keys)
	assert.Equal(t, []string{"5", "4", "3"}, orders["rating"])
	assert.Equal(t, []string{"<20", "20-29"}, orders["age_group"])
}

func TestSortOrderErrors(t *testing.T) {
	_, err := Parse([]byte("country: [Japan, Japan]"))
	assert.True(t, core.IsConfigurationError(err))

	_, err = Parse([]byte("country: Japan"))
	assert.True(t, core.IsConfigurationError(err))

	_, err = FileSource{}.SortOrders(context.Background(), filepath.Join(t.TempDir(), "none.yaml"))
	assert.True(t, core.IsConfigurationError(err))
}
