package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/campus-canteen-ledger/internal/config"
)

var levelNames = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// NewLogger builds the process-wide JSON logger. Unknown level names fall
// back to info; debug level also records source locations.
func NewLogger(cfg *config.Config) *slog.Logger {
	level, ok := levelNames[strings.ToLower(cfg.Logging.Level)]
	if !ok {
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}))
	logger.Info("logger initialized", "level", level)
	return logger
}
