package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueReaders(t *testing.T) {
	blob := map[string]any{
		"size":    float64(10),
		"count":   3,
		"name":    "main",
		"enabled": true,
		"list":    []any{"a", "b"},
		"nested":  map[string]any{"x": 1},
		"bad":     []any{1},
	}

	t.Run("int", func(t *testing.T) {
		v, err := Int(blob, "size", 0)
		require.NoError(t, err)
		assert.Equal(t, 10, v)
		v, err = Int(blob, "count", 0)
		require.NoError(t, err)
		assert.Equal(t, 3, v)
		v, err = Int(blob, "missing", 7)
		require.NoError(t, err)
		assert.Equal(t, 7, v)
		_, err = Int(blob, "name", 0)
		assert.ErrorContains(t, err, "must be a number")
	})

	t.Run("millis", func(t *testing.T) {
		d, err := Millis(blob, "size", time.Second)
		require.NoError(t, err)
		assert.Equal(t, 10*time.Millisecond, d)
		d, err = Millis(blob, "missing", time.Second)
		require.NoError(t, err)
		assert.Equal(t, time.Second, d)
	})

	t.Run("string and bool", func(t *testing.T) {
		s, err := String(blob, "name", "")
		require.NoError(t, err)
		assert.Equal(t, "main", s)
		_, err = String(blob, "size", "")
		assert.Error(t, err)
		b, err := Bool(blob, "enabled", false)
		require.NoError(t, err)
		assert.True(t, b)
	})

	t.Run("collections", func(t *testing.T) {
		l, err := StringSlice(blob, "list", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, l)
		_, err = StringSlice(blob, "bad", nil)
		assert.ErrorContains(t, err, "only strings")
		m, err := Map(blob, "nested")
		require.NoError(t, err)
		assert.Equal(t, 1, m["x"])
		m, err = Map(blob, "missing")
		require.NoError(t, err)
		assert.Empty(t, m)
	})
}
