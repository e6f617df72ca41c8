// Package logging builds the zerolog loggers used by the CLI and runner.
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

const App = "seamount"

// New returns a console logger writing to w at the named level.
func New(level string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level %q: %w", level, err)
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Str("app", App).Logger(), nil
}

// NewJSON returns a structured logger for non-interactive output.
func NewJSON(level string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level %q: %w", level, err)
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("app", App).Logger(), nil
}
