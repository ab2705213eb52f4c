package utils

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger struct {
	entry *logrus.Entry
}

func NewLogger(debug bool) *Logger {
	return NewLoggerWithFile(debug, "")
}

// NewLoggerWithFile logs to stdout and, when logFile is set, to a rotating file.
func NewLoggerWithFile(debug bool, logFile string) *Logger {
	var out io.Writer = os.Stdout
	if logFile != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
	}
	return NewLoggerTo(out, debug)
}

func NewLoggerTo(out io.Writer, debug bool) *Logger {
	base := logrus.New()
	base.SetOutput(out)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if debug {
		base.SetLevel(logrus.DebugLevel)
	} else {
		base.SetLevel(logrus.InfoLevel)
	}
	return &Logger{entry: logrus.NewEntry(base)}
}

// WithField returns a child logger that tags every line with key=value.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

func (l *Logger) Debug(v ...interface{}) {
	l.entry.Debugln(v...)
}

func (l *Logger) Info(v ...interface{}) {
	l.entry.Infoln(v...)
}

func (l *Logger) Warn(v ...interface{}) {
	l.entry.Warnln(v...)
}

func (l *Logger) Error(v ...interface{}) {
	l.entry.Errorln(v...)
}

func (l *Logger) Fatal(v ...interface{}) {
	l.entry.Fatalln(v...)
}
