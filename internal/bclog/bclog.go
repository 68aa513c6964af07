// Package bclog provides the structured logger the CLI uses in both its
// single-run and watch modes.
package bclog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps a configured *logrus.Logger.
type Logger struct {
	*logrus.Logger
}

// New builds a Logger. In quiet mode it emits JSON at warning level and
// above; otherwise it emits a human-readable text format at info level.
func New(quiet bool) *Logger {
	l := logrus.New()
	l.Out = os.Stderr
	if quiet {
		l.SetFormatter(&logrus.JSONFormatter{})
		l.SetLevel(logrus.WarnLevel)
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		l.SetLevel(logrus.InfoLevel)
	}
	return &Logger{l}
}

// Job returns an entry scoped to one preprocessing job's entry file.
func (l *Logger) Job(path string) *logrus.Entry {
	return l.WithField("file", path)
}
