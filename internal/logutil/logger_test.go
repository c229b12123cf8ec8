package logutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNewLevel(t *testing.T) {
	quiet := New(false)
	assert.False(t, quiet.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, quiet.Core().Enabled(zapcore.InfoLevel))

	verbose := New(true)
	assert.True(t, verbose.Core().Enabled(zapcore.DebugLevel))
}
