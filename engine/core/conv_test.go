package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testbridge/testbridge/engine/core"
)

func TestParseAnyTime(t *testing.T) {
	t.Run("Should parse RFC3339 strings", func(t *testing.T) {
		ts, ok := core.ParseAnyTime("2025-01-01T08:00:00Z")
		require.True(t, ok)
		assert.Equal(t, time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC), ts)
	})
	t.Run("Should parse millisecond epoch numbers", func(t *testing.T) {
		want := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
		ts, ok := core.ParseAnyTime(want.UnixMilli())
		require.True(t, ok)
		assert.Equal(t, want, ts)
	})
	t.Run("Should parse float64 epoch values from JSON decoding", func(t *testing.T) {
		want := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
		ts, ok := core.ParseAnyTime(float64(want.UnixMilli()))
		require.True(t, ok)
		assert.Equal(t, want, ts)
	})
	t.Run("Should reject empty and unsupported inputs", func(t *testing.T) {
		_, ok := core.ParseAnyTime("")
		assert.False(t, ok)
		_, ok = core.ParseAnyTime(struct{}{})
		assert.False(t, ok)
	})
}

func TestParseAnyInt(t *testing.T) {
	t.Run("Should parse numeric and string forms", func(t *testing.T) {
		for _, v := range []any{3, int64(3), float64(3), "3", " 3 "} {
			n, ok := core.ParseAnyInt(v)
			require.True(t, ok, "input %v", v)
			assert.Equal(t, int64(3), n)
		}
	})
	t.Run("Should reject non-numeric strings", func(t *testing.T) {
		_, ok := core.ParseAnyInt("high")
		assert.False(t, ok)
	})
}

func TestDeepCopyMap(t *testing.T) {
	t.Run("Should isolate the copy from the original", func(t *testing.T) {
		src := map[string]any{"steps": []any{map[string]any{"index": 1}}}
		dst, err := core.DeepCopyMap(src)
		require.NoError(t, err)
		dst["steps"].([]any)[0].(map[string]any)["index"] = 99
		assert.Equal(t, 1, src["steps"].([]any)[0].(map[string]any)["index"])
	})
	t.Run("Should pass nil through", func(t *testing.T) {
		dst, err := core.DeepCopyMap(nil)
		require.NoError(t, err)
		assert.Nil(t, dst)
	})
}

func TestIsRecognizedSystem(t *testing.T) {
	t.Run("Should recognize the closed system set", func(t *testing.T) {
		for _, s := range []string{"zephyr", "qtest", "azure-devops", "rally", "hp-alm", "excel"} {
			assert.True(t, core.IsRecognizedSystem(s), s)
		}
		assert.False(t, core.IsRecognizedSystem("testrail"))
	})
}
