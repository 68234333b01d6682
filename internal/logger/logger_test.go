package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(WARN, &buf)

	l.Info("not shown")
	l.Warn("shown", 3, errors.New("boom"))

	out := buf.String()
	assert.NotContains(t, out, "not shown")
	assert.Contains(t, out, "[WARN] logger_test.go:")
	assert.Contains(t, out, "shown 3 boom")
	assert.NotContains(t, out, colorReset)
}

func TestNonPrimitiveArgsAreDumpedAsJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(DEBUG, &buf)

	l.Debug("payload", map[string]int{"goals": 2})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Contains(t, lines[0], "[Object of type map[string]int]")
	assert.Contains(t, buf.String(), `"goals": 2`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", DEBUG},
		{"", INFO},
		{"Warning", WARN},
		{" error ", ERROR},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("chatty")
	assert.Error(t, err)
}

func TestOutputRune(t *testing.T) {
	assert.Equal(t, 'f', OutputRune("file"))
	assert.Equal(t, 'b', OutputRune("BOTH"))
	assert.Equal(t, 'c', OutputRune("console"))
	assert.Equal(t, 'c', OutputRune(""))
}

func TestSetLogOutputRejectsUnknownSelector(t *testing.T) {
	assert.Error(t, SetLogOutput('x', ""))
}
