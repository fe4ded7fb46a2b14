package main

import (
	"io"
	"log/slog"
	"time"

	tslog "github.com/aouyang1/go-tsestimator/log"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

func newConsoleLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()
}

// toZerologLevel maps a slog level onto the console logger levels.
func toZerologLevel(level slog.Level) zerolog.Level {
	switch {
	case level <= slog.LevelDebug:
		return zerolog.DebugLevel
	case level <= slog.LevelInfo:
		return zerolog.InfoLevel
	case level <= slog.LevelWarn:
		return zerolog.WarnLevel
	}
	return zerolog.ErrorLevel
}

// logError logs err along with the structured fields of the first typed error in its chain.
func logError(logger zerolog.Logger, err error, msg string) {
	event := logger.Error().Err(err)
	var details zerolog.LogObjectMarshaler
	if errors.As(err, &details) {
		event = event.Object("details", details)
	}
	event.Msg(msg)
}

// setupLogging installs the library logger at level writing json to w and returns the
// console logger at the same level.
func setupLogging(console zerolog.Logger, w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := tslog.ToLogLevel(level)
	if err != nil {
		return console, err
	}
	slog.SetDefault(tslog.NewLogger(w, lvl))
	return console.Level(toZerologLevel(lvl)), nil
}
