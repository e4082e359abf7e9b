package storage

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// badgerLogger bridges badger's printf-style internal logging onto hclog so
// store noise lands in a structured sink, muted below warning level.
type badgerLogger struct {
	logger hclog.Logger
}

func newBadgerLogger() *badgerLogger {
	return &badgerLogger{
		logger: hclog.New(&hclog.LoggerOptions{
			Name:  "badger",
			Level: hclog.Warn,
		}),
	}
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(render(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(render(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(render(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(render(format, args...))
}

func render(format string, args ...interface{}) string {
	return strings.TrimSuffix(fmt.Sprintf(format, args...), "\n")
}
