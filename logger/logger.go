package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Init builds the process logger from LOG_LEVEL (default info) and LOG_FORMAT (json or text)
// Call once from main; the viewer passes a file because stdout belongs to the terminal
func Init(out io.Writer) *logrus.Logger {
	return New(out, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// New returns a logger for the given level and format names; unknown values fall back to info and text
func New(out io.Writer, level, format string) *logrus.Logger {
	l := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.ToLower(format) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if out == nil {
		out = os.Stdout
	}
	l.SetOutput(out)
	return l
}

// Discard returns a logger that drops everything
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
