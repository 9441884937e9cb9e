// Package logging centralizes phuslu/log configuration so every pipeline
// and the CLI share one structured logger instance.
package logging

import (
	"io"
	"os"

	"github.com/phuslu/log"
)

// Default is the process-wide logger. Library code logs through this value
// rather than constructing its own logger, so output configuration (level,
// writer) stays in one place; the CLI is the only caller that reconfigures
// it.
var Default = log.Logger{
	Level:  log.InfoLevel,
	Writer: &log.ConsoleWriter{Writer: os.Stderr},
}

// Configure sets the logger's level and writer. Called once by the CLI
// entry point before any pipeline runs. Loggers already returned by For
// keep the level and writer they copied, so package-level loggers created
// at init do not see the new settings.
func Configure(level log.Level, w io.Writer) {
	Default.Level = level
	Default.Writer = &log.ConsoleWriter{Writer: w}
}

// For returns a child logger tagged with the given parser/component name,
// used as the logging.For("epub").Warn()... pattern throughout the
// pipelines.
func For(component string) log.Logger {
	l := Default
	l.Context = log.NewContext(nil).Str("component", component).Value()
	return l
}
