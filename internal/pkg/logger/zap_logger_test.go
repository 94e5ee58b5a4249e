package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerAttachesModuleAndError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &ZapLogger{logger: zap.New(core)}

	l.Error("Retriever", "vector store unavailable", map[string]interface{}{
		"error": errors.New("connection refused"),
	})
	l.Info("Retriever", "search done", nil)

	entries := logs.All()
	assert.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "Retriever", first["module"])
	assert.Equal(t, "connection refused", first["error"])

	second := entries[1].ContextMap()
	assert.Equal(t, map[string]interface{}{}, second["details"])
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Warn("Any", "ignored", nil)
	assert.NoError(t, l.Sync())
}
