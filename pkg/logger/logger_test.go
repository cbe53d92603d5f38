package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONFieldsAndCaller(t *testing.T) {
	var buf bytes.Buffer
	Initialize(Config{Level: "debug", Format: "json", Output: &buf})

	Error("cart write failed", errors.New("boom"), map[string]interface{}{
		"key": "cart:abc",
	})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "cart write failed", entry["message"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "cart:abc", entry["key"])
	assert.Contains(t, entry["caller"], "logger_test.go")
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Initialize(Config{Level: "warn", Format: "json", Output: &buf})

	Debug("hidden")
	Info("hidden")
	assert.Empty(t, buf.String())

	WithContext(map[string]interface{}{"session_id": "s1"}).Warn("visible")
	assert.Contains(t, buf.String(), `"session_id":"s1"`)
	assert.Contains(t, buf.String(), "visible")
}
