package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductionLogsJSON(t *testing.T) {
	var buf bytes.Buffer
	l := setup("production", &buf)

	l.Debug("hidden")
	l.Info("event dispatched", "event_type", "LEAD_CREATED")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "event dispatched", rec["msg"])
	assert.Equal(t, "LEAD_CREATED", rec["event_type"])
	assert.Equal(t, "autovault-agents", rec["service"])
}

func TestDevelopmentLogsDebugText(t *testing.T) {
	var buf bytes.Buffer
	l := setup("development", &buf)

	l.Debug("guard skipped", "lead_id", "L1")

	assert.Contains(t, buf.String(), "guard skipped")
	assert.Contains(t, buf.String(), "lead_id=L1")
}
