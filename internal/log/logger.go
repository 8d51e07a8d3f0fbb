// Package log provides the diagnostic log sink for the skiff runtime.
// All output goes to a file, never to the terminal: the UI goroutine owns
// the tty, and background workers must have somewhere safe to report.
package log

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu     sync.Mutex
	logger = newLogger()
	sink   *os.File
)

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetFile redirects the sink to the given path, creating or appending.
// Until SetFile is called, log output is discarded.
func SetFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	if sink != nil {
		sink.Close()
	}
	sink = f
	logger.SetOutput(f)
	return nil
}

// SetDebug toggles debug-level output
func SetDebug(debug bool) {
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}

// Info logs a formatted informational message
func Info(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

// Debug logs a formatted debug message
func Debug(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

// Warn logs a formatted warning message
func Warn(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

// Error logs a formatted error message
func Error(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}

// WithOrigin returns an entry tagged with the originating unit name,
// used by background workers so failures can be traced to their spawner.
func WithOrigin(origin string) *logrus.Entry {
	return logger.WithField("origin", origin)
}

// Flush syncs and closes the file sink. Safe to call more than once;
// subsequent log calls after Flush are discarded.
func Flush() error {
	mu.Lock()
	defer mu.Unlock()
	if sink == nil {
		return nil
	}
	err := sink.Sync()
	if cerr := sink.Close(); err == nil {
		err = cerr
	}
	sink = nil
	logger.SetOutput(io.Discard)
	return err
}
