package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel(" error "))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("bogus"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
}

func TestNewBuildsBothFormats(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		l, err := New(Config{Level: "debug", Format: format})
		require.NoError(t, err)
		require.NotNil(t, l)
	}
}

func TestObservedFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromCore(core).Named("picker").With(String("session", "abc"))

	l.Warn("related fetch failed",
		Err(errors.New("boom")),
		Int("selected", 2),
		Duration("elapsed", time.Second),
		Strings("symptoms", []string{"cough"}),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "picker", entry.LoggerName)
	assert.Equal(t, "related fetch failed", entry.Message)

	ctx := entry.ContextMap()
	assert.Equal(t, "abc", ctx["session"])
	assert.Equal(t, "boom", ctx["error"])
	assert.EqualValues(t, 2, ctx["selected"])
}

func TestNopLogger(t *testing.T) {
	l := NewNop()
	l.Info("ignored")
	assert.NotNil(t, l.With(Bool("x", true)).Named("y"))
	assert.NoError(t, l.Sync())
}
