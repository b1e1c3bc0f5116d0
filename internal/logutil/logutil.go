package logutil

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cloud.google.com/go/compute/metadata"
)

// ConfigureLogger sets up the global logger to drop events below level.
// On GCE events are written as JSON with a severity field, elsewhere they go
// to a console writer on stderr.
func ConfigureLogger(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if metadata.OnGCE() {
		out = os.Stderr
	}
	log.Logger = NewLogger(out, lvl, metadata.OnGCE())
	return nil
}

func NewLogger(out io.Writer, lvl zerolog.Level, severity bool) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	l := zerolog.New(out).With().Timestamp().Caller().Stack().Logger().Sample(LevelSampler{Level: lvl})
	if severity {
		l = l.Hook(ErrorHook{})
	}
	return l
}

type ErrorHook struct{}

func (h ErrorHook) Run(e *zerolog.Event, level zerolog.Level, _ string) {
	e.Str("severity", level.String())
}
