// Package logging builds the stderr logger shared by the commands.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w. Quiet keeps only warnings and errors;
// debug wins over quiet.
func New(w io.Writer, quiet, debug bool) *log.Logger {
	level := log.InfoLevel
	switch {
	case debug:
		level = log.DebugLevel
	case quiet:
		level = log.WarnLevel
	}

	return log.NewWithOptions(w, log.Options{
		Level:  level,
		Prefix: "cp2md",
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
