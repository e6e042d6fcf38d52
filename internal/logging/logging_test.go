package logging_test

import (
	"log/slog"
	"testing"

	"strangerlink/backend/internal/logging"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEV":     slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"prod":    slog.LevelError,
	} {
		assert.Equal(t, want, logging.ParseLevel(in), "level %q", in)
	}
}
