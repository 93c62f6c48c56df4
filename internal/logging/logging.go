package logging

import (
	"io"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Level converts verbose and debug flags to a zerolog level.
// --debug shows V(1) logs, --verbose shows info, otherwise warnings and errors.
func Level(verbose, debug bool) zerolog.Level {
	switch {
	case debug:
		return zerolog.DebugLevel
	case verbose:
		return zerolog.InfoLevel
	default:
		return zerolog.WarnLevel
	}
}

// New returns a logr.Logger writing to w at the given level. Terminals get
// the zerolog console format, anything else gets JSON lines.
func New(w io.Writer, level zerolog.Level) logr.Logger {
	zerologr.NameFieldName = "logger"
	zerologr.NameSeparator = "/"

	zl := zerolog.New(w)
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		zl = zl.Output(zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    os.Getenv("NO_COLOR") != "",
			TimeFormat: time.RFC3339,
		})
	}

	zl = zl.Level(level).With().Timestamp().Logger()
	return zerologr.New(&zl)
}
