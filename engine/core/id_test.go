package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testbridge/testbridge/engine/core"
)

func TestNewID(t *testing.T) {
	t.Run("Should generate a new unique ID", func(t *testing.T) {
		id1, err := core.NewID()
		require.NoError(t, err)
		id2, err := core.NewID()
		require.NoError(t, err)
		assert.NotEqual(t, id1, id2)
		assert.False(t, id1.IsZero())
	})
}

func TestMustNewID(t *testing.T) {
	t.Run("Should generate IDs without panicking", func(t *testing.T) {
		id := core.MustNewID()
		assert.NotEmpty(t, id.String())
	})
}

func TestParseID(t *testing.T) {
	t.Run("Should round-trip a generated ID", func(t *testing.T) {
		id := core.MustNewID()
		parsed, err := core.ParseID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	})
	t.Run("Should reject an invalid ID", func(t *testing.T) {
		_, err := core.ParseID("not-a-valid-ksuid")
		assert.Error(t, err)
	})
}

func TestID_IsZero(t *testing.T) {
	t.Run("Should return true for zero-value ID", func(t *testing.T) {
		var zeroID core.ID
		assert.True(t, zeroID.IsZero())
	})
	t.Run("Should return false for non-zero ID", func(t *testing.T) {
		assert.False(t, core.ID("some-id").IsZero())
	})
}
