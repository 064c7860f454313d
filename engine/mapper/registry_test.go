package mapper_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testbridge/testbridge/engine/core"
	"github.com/testbridge/testbridge/engine/mapper"
)

type nopMapper struct{}

func (nopMapper) ToCanonical(data map[string]any, ctx *mapper.Context) (any, error) {
	return nil, nil
}

func (nopMapper) FromCanonical(entity any, ctx *mapper.Context) (map[string]any, error) {
	return nil, nil
}

func (nopMapper) ValidateMapping(source, target map[string]any) []string {
	return nil
}

func TestRegistry(t *testing.T) {
	t.Run("Should resolve a registered mapper", func(t *testing.T) {
		r := mapper.NewRegistry()
		require.NoError(t, r.Register(core.SystemZephyr, core.EntityTestCase, nopMapper{}))
		m, err := r.Get(core.SystemZephyr, core.EntityTestCase)
		require.NoError(t, err)
		assert.NotNil(t, m)
	})
	t.Run("Should return ErrMapperNotFound for unknown keys", func(t *testing.T) {
		r := mapper.NewRegistry()
		_, err := r.Get(core.SystemRally, core.EntityTestCase)
		assert.ErrorIs(t, err, mapper.ErrMapperNotFound)
	})
	t.Run("Should reject duplicate registration", func(t *testing.T) {
		r := mapper.NewRegistry()
		require.NoError(t, r.Register(core.SystemQTest, core.EntityTestCase, nopMapper{}))
		assert.Error(t, r.Register(core.SystemQTest, core.EntityTestCase, nopMapper{}))
	})
	t.Run("Should reject registration after freeze", func(t *testing.T) {
		r := mapper.NewRegistry()
		r.Freeze()
		err := r.Register(core.SystemZephyr, core.EntityTestCase, nopMapper{})
		assert.ErrorIs(t, err, mapper.ErrRegistryFrozen)
	})
	t.Run("Should still serve reads after freeze", func(t *testing.T) {
		r := mapper.NewRegistry()
		require.NoError(t, r.Register(core.SystemZephyr, core.EntityTestCase, nopMapper{}))
		r.Freeze()
		_, err := r.Get(core.SystemZephyr, core.EntityTestCase)
		assert.NoError(t, err)
	})
}

func TestContext_Overrides(t *testing.T) {
	t.Run("Should rename fields through FieldName", func(t *testing.T) {
		ctx := mapper.NewContext(core.SystemZephyr, core.SystemQTest)
		ctx.FieldMappings["Risk"] = "RiskLevel"
		assert.Equal(t, "RiskLevel", ctx.FieldName("Risk"))
		assert.Equal(t, "Component", ctx.FieldName("Component"))
	})
	t.Run("Should substitute values through Value", func(t *testing.T) {
		ctx := mapper.NewContext(core.SystemZephyr, core.SystemQTest)
		ctx.ValueMappings["environment"] = map[string]any{"prod": "production"}
		assert.Equal(t, "production", ctx.Value("environment", "prod"))
		assert.Equal(t, "staging", ctx.Value("environment", "staging"))
	})
	t.Run("Should pass through on a nil context", func(t *testing.T) {
		var ctx *mapper.Context
		assert.Equal(t, "Risk", ctx.FieldName("Risk"))
		assert.Equal(t, "x", ctx.Value("f", "x"))
	})
}
