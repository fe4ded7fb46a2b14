// Package log configures the process wide slog logger and defines the attribute keys used
// by the estimator, forecasters and dataset loader.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
)

var ErrInvalidLogLevel = errors.New("invalid log level")

// NewLogger returns a JSON logger writing to w at the given level with stack traces
// appended to logged errors.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	ops := slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				attr.Key = "severity"
			case slog.MessageKey:
				attr.Key = "message"
			}
			return attr
		},
	}
	return slog.New(WrapByErrFmtHandler(slog.NewJSONHandler(w, &ops)))
}

// ToLogLevel parses one of debug, info, warn or error.
func ToLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "info", "":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("got %q, %w", level, ErrInvalidLogLevel)
}

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
