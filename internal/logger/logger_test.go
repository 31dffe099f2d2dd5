package logger_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/monkeyapp/internal/logger"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
}

func newTestLogger(buf *bytes.Buffer, level logger.Level) *logger.Logger {
	return logger.New(
		logger.WithOutput(buf),
		logger.WithLevel(level),
		logger.WithColors(false),
		logger.WithClock(fixedClock),
	)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]logger.Level{
		"debug":   logger.DEBUG,
		"INFO":    logger.INFO,
		"warning": logger.WARN,
		"WARN":    logger.WARN,
		" error ": logger.ERROR,
		"bogus":   logger.INFO,
		"":        logger.INFO,
	}
	for in, want := range tests {
		assert.Equal(t, want, logger.ParseLevel(in), "input %q", in)
	}
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, logger.WARN)

	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("shown %d", 1)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "shown 1")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestLogger_PrefixAndSortedFields(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, logger.DEBUG).
		WithPrefix("graph").
		WithFields(map[string]any{"zeta": 1, "alpha": "two words"})

	log.Info("friend added")

	line := buf.String()
	require.NotEmpty(t, line)
	assert.True(t, strings.HasPrefix(line, "2024-03-01 12:30:00.000 INFO "))
	assert.Contains(t, line, "[graph] ")
	assert.Contains(t, line, "[logger_test.go:")
	assert.True(t, strings.HasSuffix(line, `friend added alpha="two words" zeta=1`+"\n"), line)
}

func TestLogger_DerivedLoggersDoNotLeakFields(t *testing.T) {
	var buf bytes.Buffer
	base := newTestLogger(&buf, logger.DEBUG)
	child := base.WithField("request_id", "abc")

	base.Info("base")
	child.Info("child")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.NotContains(t, lines[0], "request_id")
	assert.Contains(t, lines[1], "request_id=abc")
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, logger.INFO)

	ctx := logger.NewContext(context.Background(), log)
	assert.Same(t, log, logger.FromContext(ctx))
	assert.Same(t, logger.Default(), logger.FromContext(context.Background()))
}
