package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/disaster-relief/internal/config"
)

func TestNewLogger_Level(t *testing.T) {
	logger := NewLogger(&config.Config{LogLevel: "debug", LogFormat: "text"})
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))

	logger = NewLogger(&config.Config{LogLevel: "error", LogFormat: "json"})
	require.NotNil(t, logger)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelError))
}
