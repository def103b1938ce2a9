package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.Disabled, ParseLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("bogus"))
}

func TestLogSearch_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{Level: "info", Output: &buf})
	l.LogSearch("MA0004.1", 3, 2, 15*time.Millisecond, nil)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "tfbscan", rec["service"])
	assert.Equal(t, "search", rec["event"])
	assert.Equal(t, "MA0004.1", rec["motif"])
	assert.EqualValues(t, 3, rec["sequences"])
	assert.Equal(t, "info", rec["level"])
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{Level: "info", Output: &buf})
	l.SourceLogger("entrez").LogRemoteCall("esummary", time.Millisecond, nil)
	assert.Zero(t, buf.Len())

	l.SourceLogger("entrez").LogRemoteCall("esummary", time.Millisecond, errors.New("boom"))
	assert.Contains(t, buf.String(), `"source":"entrez"`)
	assert.Contains(t, buf.String(), `"error":"boom"`)
}
