package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thomsch/export-lltc4j/internal/adapter/observability"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	flags := log.Flags()
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	})
	return &buf
}

func TestLoggerHumanFormat(t *testing.T) {
	buf := captureLog(t)
	logger := observability.NewLogger(observability.LogLevelInfo, observability.LogFormatHuman)

	logger.LogInfo(context.Background(), "export finished", map[string]interface{}{
		"commits":  12,
		"projects": 3,
	})

	output := buf.String()
	assert.Contains(t, output, "[INFO]")
	assert.Contains(t, output, "export finished")
	assert.Contains(t, output, "commits=12, projects=3")
}

func TestLoggerHumanFormatWithoutFields(t *testing.T) {
	buf := captureLog(t)
	logger := observability.NewLogger(observability.LogLevelInfo, observability.LogFormatHuman)

	logger.LogWarning(context.Background(), "skipping commit", nil)

	assert.Contains(t, buf.String(), "[WARN] skipping commit")
}

func TestLoggerJSONFormat(t *testing.T) {
	buf := captureLog(t)
	logger := observability.NewLogger(observability.LogLevelInfo, observability.LogFormatJSON)

	logger.LogInfo(context.Background(), "export finished", map[string]interface{}{
		"commits": 12,
	})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "export finished", entry["message"])
	assert.Equal(t, float64(12), entry["commits"])
	assert.NotEmpty(t, entry["timestamp"])
}

func TestLoggerRespectsLevel(t *testing.T) {
	buf := captureLog(t)
	logger := observability.NewLogger(observability.LogLevelError, observability.LogFormatHuman)

	logger.LogInfo(context.Background(), "quiet", nil)
	assert.Empty(t, buf.String())

	logger.LogError(context.Background(), "loud", nil)
	assert.Contains(t, buf.String(), "[ERROR] loud")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  observability.LogLevel
	}{
		{"debug", observability.LogLevelDebug},
		{"info", observability.LogLevelInfo},
		{"", observability.LogLevelInfo},
		{"warning", observability.LogLevelWarning},
		{"warn", observability.LogLevelWarning},
		{"error", observability.LogLevelError},
	}
	for _, test := range tests {
		level, err := observability.ParseLevel(test.input)
		require.NoError(t, err, test.input)
		assert.Equal(t, test.want, level, test.input)
	}

	_, err := observability.ParseLevel("verbose")
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	format, err := observability.ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, observability.LogFormatJSON, format)

	format, err = observability.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, observability.LogFormatHuman, format)

	_, err = observability.ParseFormat("xml")
	assert.Error(t, err)
}
