package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("json format honours level", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := newLogger("warn", "json", buf)
		logger.Info("hidden")
		logger.Warn("shown", "fragment", "f1")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "shown", line["msg"])
		assert.Equal(t, "f1", line["fragment"])
	})

	t.Run("unknown level and format fall back", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := newLogger("loud", "xml", buf)
		logger.Debug("hidden")
		logger.Info("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "msg=shown")
	})
}
