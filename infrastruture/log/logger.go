// Package log provides the leveled, prefixed loggers handed to every long-lived component.
package log

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	FormatText = "text"
	FormatJSON = "json"

	colorReset = "\033[0m"
)

var ErrNoOutput = errors.New("logger needs an output")

// Options are shared by every logger built with New.
type Options struct {
	Level  string // logrus level name, defaults to info
	Format string // text or json, defaults to text
}

// Logger writes Info, Warning and Error lines tagged with a component prefix.
type Logger struct {
	entry *logrus.Entry
}

// New creates a logger whose lines carry the given prefix.
func New(prefix, color string, out io.Writer, opts ...Options) (*Logger, error) {
	if out == nil {
		return nil, ErrNoOutput
	}

	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}

	l := logrus.New()
	l.SetOutput(out)

	level, err := logrus.ParseLevel(o.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.ToLower(o.Format) == FormatJSON {
		l.SetFormatter(&logrus.JSONFormatter{})
		return &Logger{entry: l.WithField("component", prefix)}, nil
	}

	l.SetFormatter(&prefixFormatter{
		prefix: fmt.Sprintf("%s[%s]%s ", color, prefix, colorReset),
		inner:  &logrus.TextFormatter{FullTimestamp: true, DisableQuote: true},
	})
	return &Logger{entry: logrus.NewEntry(l)}, nil
}

// Info logs at info level.
func (l *Logger) Info(msg string) {
	l.entry.Info(msg)
}

// Warning logs at warning level.
func (l *Logger) Warning(msg string) {
	l.entry.Warn(msg)
}

// Error logs at error level.
func (l *Logger) Error(msg string) {
	l.entry.Error(msg)
}

// prefixFormatter puts the colored component tag in front of every text line.
type prefixFormatter struct {
	prefix string
	inner  logrus.Formatter
}

func (f *prefixFormatter) Format(e *logrus.Entry) ([]byte, error) {
	line, err := f.inner.Format(e)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(len(f.prefix) + len(line))
	buf.WriteString(f.prefix)
	buf.Write(line)
	return buf.Bytes(), nil
}
