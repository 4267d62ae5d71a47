package runid

import (
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsAValidSortableKsuid(t *testing.T) {
	id := New()
	parsed, err := ksuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, parsed.String())
}

func TestNewReturnsDistinctIDs(t *testing.T) {
	a, b := New(), New()
	assert.NotEqual(t, a, b)
}
