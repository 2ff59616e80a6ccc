// Package logging provides the Logger contract shared by every component
// of ordcast. The shape mirrors the teacher's definition.DefaultLogger,
// but is backed by logrus instead of the bare standard library logger.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is implemented by anything that wants to receive ordcast's
// diagnostic output. The schedulers, Node, Broadcaster and the HTTP
// servers take one of these at construction time; the outbound
// httptransport.PeerClient does not, and logs through a package-level
// logger instead.
type Logger interface {
	Info(v ...interface{})
	Infof(format string, v ...interface{})
	Warn(v ...interface{})
	Warnf(format string, v ...interface{})
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})
	Fatal(v ...interface{})
	Fatalf(format string, v ...interface{})
	Panic(v ...interface{})
	Panicf(format string, v ...interface{})

	// ToggleDebug turns debug-level logging on or off and returns the
	// new state.
	ToggleDebug(value bool) bool
}

// logrusLogger is the default Logger implementation used when the
// caller does not provide one of its own.
type logrusLogger struct {
	entry *logrus.Entry
}

// New creates the default logrus-backed Logger, tagged with a
// component name (e.g. the node id) the way the teacher tags every
// line with its partition name.
func New(component string) Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &logrusLogger{entry: l.WithField("component", component)}
}

func (l *logrusLogger) Info(v ...interface{})                  { l.entry.Info(v...) }
func (l *logrusLogger) Infof(format string, v ...interface{})  { l.entry.Infof(format, v...) }
func (l *logrusLogger) Warn(v ...interface{})                  { l.entry.Warn(v...) }
func (l *logrusLogger) Warnf(format string, v ...interface{})  { l.entry.Warnf(format, v...) }
func (l *logrusLogger) Error(v ...interface{})                 { l.entry.Error(v...) }
func (l *logrusLogger) Errorf(format string, v ...interface{}) { l.entry.Errorf(format, v...) }

func (l *logrusLogger) Debug(v ...interface{}) {
	l.entry.Debug(v...)
}

func (l *logrusLogger) Debugf(format string, v ...interface{}) {
	l.entry.Debugf(format, v...)
}

func (l *logrusLogger) Fatal(v ...interface{}) {
	l.entry.Fatal(v...)
}

func (l *logrusLogger) Fatalf(format string, v ...interface{}) {
	l.entry.Fatalf(format, v...)
}

func (l *logrusLogger) Panic(v ...interface{}) {
	l.entry.Panic(v...)
}

func (l *logrusLogger) Panicf(format string, v ...interface{}) {
	l.entry.Panicf(format, v...)
}

func (l *logrusLogger) ToggleDebug(value bool) bool {
	if value {
		l.entry.Logger.SetLevel(logrus.DebugLevel)
	} else {
		l.entry.Logger.SetLevel(logrus.InfoLevel)
	}
	return value
}
