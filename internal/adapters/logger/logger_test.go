package logger_adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"listing-service/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestSlogAdapterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelInfo, IsJSON: true})

	scoped := logger.WithFields(port.Fields{"component": "PropertyFileStore"})
	scoped.Info("Property created", port.Fields{"property_id": "p-1"})
	scoped.Debug("hidden", nil)
	scoped.Error("Failed", errors.New("disk full"), nil)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "Property created", lines[0]["msg"])
	assert.Equal(t, "PropertyFileStore", lines[0]["component"])
	assert.Equal(t, "p-1", lines[0]["property_id"])
	assert.Equal(t, "ERROR", lines[1]["level"])
	assert.Equal(t, "disk full", lines[1]["error"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

type fakePoster struct {
	tags     []string
	messages []port.Fields
}

func (f *fakePoster) Post(tag string, message interface{}) error {
	f.tags = append(f.tags, tag)
	f.messages = append(f.messages, message.(port.Fields))
	return nil
}

func (f *fakePoster) Close() error { return nil }

func TestFluentLoggerAdapter(t *testing.T) {
	poster := &fakePoster{}
	logger := newFluentLoggerAdapter(poster, "listing-service", slog.LevelInfo)

	scoped := logger.WithFields(port.Fields{"use_case": "RecordLead"})
	scoped.Debug("skipped", nil)
	scoped.Warn("Lead was not recorded", port.Fields{"plan": "free"})

	require.Len(t, poster.tags, 1)
	assert.Equal(t, "listing-service.warn", poster.tags[0])
	msg := poster.messages[0]
	assert.Equal(t, "RecordLead", msg["use_case"])
	assert.Equal(t, "free", msg["plan"])
	assert.Equal(t, "Lead was not recorded", msg["message"])

	// родительский логгер не получил полей дочернего
	logger.Info("plain", nil)
	_, has := poster.messages[1]["use_case"]
	assert.False(t, has)
}

func TestMultiLogger(t *testing.T) {
	_, err := NewMultiloggerAdapter()
	assert.Error(t, err)

	var a, b bytes.Buffer
	multi, err := NewMultiloggerAdapter(
		NewSlogAdapter(SlogConfig{Writer: &a, IsJSON: true}),
		NewSlogAdapter(SlogConfig{Writer: &b, IsJSON: true}),
	)
	require.NoError(t, err)

	multi.WithFields(port.Fields{"trace_id": "t-1"}).Warn("both", nil)
	multi.Info("plain", nil)

	for _, buf := range []*bytes.Buffer{&a, &b} {
		lines := decodeLines(t, buf)
		require.Len(t, lines, 2)
		assert.Equal(t, "t-1", lines[0]["trace_id"])
		// поля дочернего логгера не попадают в родительский
		_, has := lines[1]["trace_id"]
		assert.False(t, has)
	}
}

func TestMultiLoggerSkipsNil(t *testing.T) {
	_, err := NewMultiloggerAdapter(nil, nil)
	assert.Error(t, err)

	var buf bytes.Buffer
	single := NewSlogAdapter(SlogConfig{Writer: &buf, IsJSON: true})
	got, err := NewMultiloggerAdapter(nil, single)
	require.NoError(t, err)
	assert.Same(t, single, got)
}
