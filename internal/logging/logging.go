// Package logging builds the application's structured JSON logger.
//
// Every record is a single JSON object per line with a "ts" timestamp in the
// configured time zone, matching the access log written by the HTTP middleware.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/natefinch/lumberjack"

	"pdfchat/internal/config"
)

// New returns a JSON logger writing to stdout, or to a rotating file when cfg.File is set.
func New(cfg config.LogConfig, loc *time.Location) *slog.Logger {
	return NewWithWriter(writer(cfg), cfg.Level, loc)
}

// NewWithWriter returns a JSON logger writing to w.
func NewWithWriter(w io.Writer, level string, loc *time.Location) *slog.Logger {
	if loc == nil {
		loc = time.UTC
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.String("ts", a.Value.Time().In(loc).Format(time.RFC3339Nano))
			}
			return a
		},
	})
	return slog.New(h)
}

// ParseLevel maps a level name to a slog.Level; unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func writer(cfg config.LogConfig) io.Writer {
	if cfg.File == "" {
		return os.Stdout
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
}
