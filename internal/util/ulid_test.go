package util

import (
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewULID(t *testing.T) {
	prev := NewULID()
	for i := 0; i < 100; i++ {
		id := NewULID()
		_, err := ulid.Parse(id)
		require.NoError(t, err)
		assert.Greater(t, id, prev)
		prev = id
	}
}
