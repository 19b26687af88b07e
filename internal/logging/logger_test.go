package logging_test

import (
	"testing"

	"bookshelf/internal/config"
	"bookshelf/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	logger, err := logging.New(config.Log{Level: "warn"}, "production")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	dev, err := logging.New(config.Log{Level: "debug"}, config.EnvDevelopment)
	require.NoError(t, err)
	assert.True(t, dev.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_BadLevel(t *testing.T) {
	_, err := logging.New(config.Log{Level: "loud"}, "production")
	assert.Error(t, err)
}
