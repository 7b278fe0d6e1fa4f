package commands

import (
	"io"

	"github.com/rs/zerolog"
)

// zerologLogger backs breeze.Logger with zerolog.
type zerologLogger struct {
	logger zerolog.Logger
}

// newLogger writes human-readable log lines to out. verbose enables debug
// output; otherwise only warnings and errors are shown.
func newLogger(out io.Writer, verbose bool) *zerologLogger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	output := zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05", NoColor: true}

	return &zerologLogger{
		logger: zerolog.New(output).Level(level).With().Timestamp().Logger(),
	}
}

func (l *zerologLogger) Debug(msg string, fields map[string]interface{}) {
	addFields(l.logger.Debug(), fields).Msg(msg)
}

func (l *zerologLogger) Info(msg string, fields map[string]interface{}) {
	addFields(l.logger.Info(), fields).Msg(msg)
}

func (l *zerologLogger) Warn(msg string, fields map[string]interface{}) {
	addFields(l.logger.Warn(), fields).Msg(msg)
}

func (l *zerologLogger) Error(msg string, fields map[string]interface{}) {
	addFields(l.logger.Error(), fields).Msg(msg)
}

func addFields(event *zerolog.Event, fields map[string]interface{}) *zerolog.Event {
	for k, v := range fields {
		event = event.Interface(k, v)
	}

	return event
}
