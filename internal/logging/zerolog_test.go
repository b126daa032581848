package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

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

func TestZerologLogger_FieldsAndLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, "info", false)
	ctx := context.Background()

	log.Debug(ctx, "filtered")
	log.Info(ctx, "login", "user", "ana", "status", 200)
	log.Error(ctx, "failed", "error", errors.New("boom"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)

	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "login", lines[0]["message"])
	assert.Equal(t, "ana", lines[0]["user"])
	assert.EqualValues(t, 200, lines[0]["status"])

	assert.Equal(t, "error", lines[1]["level"])
	assert.Equal(t, "boom", lines[1]["error"])
}

func TestZerologLogger_WithAndOddArgs(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, "debug", false).With("component", "devapi")

	log.Warn(context.Background(), "odd", "dangling")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "devapi", lines[0]["component"])
	assert.Equal(t, "!MISSING", lines[0]["dangling"])
}
