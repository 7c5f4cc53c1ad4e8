package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps logrus with additional functionality
type Logger struct {
	*logrus.Logger
	fields logrus.Fields
}

// Options controls where and how log output is written
type Options struct {
	Level      string
	Format     string // json, text
	File       string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
	Quiet      bool // do not mirror file output to stdout
}

// New creates a logger from options
func New(opts Options) *Logger {
	log := logrus.New()

	logLevel, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	log.SetLevel(logLevel)

	l := &Logger{
		Logger: log,
		fields: make(logrus.Fields),
	}
	l.SetFormatter(opts.Format)

	if opts.File != "" {
		logDir := filepath.Dir(opts.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Printf("Failed to create log directory: %v\n", err)
		} else {
			// Use lumberjack for log rotation
			fileLogger := &lumberjack.Logger{
				Filename:   opts.File,
				MaxSize:    opts.MaxSize,
				MaxBackups: opts.MaxBackups,
				MaxAge:     opts.MaxAge,
				Compress:   opts.Compress,
			}

			if opts.Quiet {
				log.SetOutput(fileLogger)
			} else {
				log.SetOutput(io.MultiWriter(os.Stdout, fileLogger))
			}
		}
	}

	return l
}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() *Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &Logger{
		Logger: log,
		fields: make(logrus.Fields),
	}
}

// WithField adds a field to the logger context
func (l *Logger) WithField(key string, value interface{}) *Logger {
	newFields := make(logrus.Fields)
	for k, v := range l.fields {
		newFields[k] = v
	}
	newFields[key] = value

	return &Logger{
		Logger: l.Logger,
		fields: newFields,
	}
}

// WithFields adds multiple fields to the logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	newFields := make(logrus.Fields)
	for k, v := range l.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &Logger{
		Logger: l.Logger,
		fields: newFields,
	}
}

// WithComponent adds a component field to the logger
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(logrus.DebugLevel, msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(logrus.InfoLevel, msg, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(msg string, args ...interface{}) {
	l.log(logrus.WarnLevel, msg, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(logrus.ErrorLevel, msg, args...)
}

// log treats an even number of args whose keys are strings as key-value
// pairs, anything else as printf arguments.
func (l *Logger) log(level logrus.Level, msg string, args ...interface{}) {
	entry := l.Logger.WithFields(l.fields)
	if len(args) == 0 {
		entry.Log(level, msg)
		return
	}
	if fields, ok := pairs(args); ok {
		entry.WithFields(fields).Log(level, msg)
		return
	}
	entry.Logf(level, msg, args...)
}

func pairs(args []interface{}) (logrus.Fields, bool) {
	if len(args)%2 != 0 {
		return nil, false
	}
	fields := make(logrus.Fields, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			return nil, false
		}
		fields[key] = args[i+1]
	}
	return fields, true
}

// Writer returns an io.Writer for the logger
func (l *Logger) Writer() io.Writer {
	return l.Logger.Writer()
}

// SecurityLogger logs security-related events
func (l *Logger) SecurityLogger(event, userID, details string) {
	l.WithFields(map[string]interface{}{
		"event_type": "security",
		"event":      event,
		"user_id":    userID,
		"details":    details,
		"timestamp":  time.Now().Unix(),
	}).Warning("Security event logged")
}

// SessionLogger logs session lifecycle events
func (l *Logger) SessionLogger(event, userID, details string) {
	l.WithFields(map[string]interface{}{
		"event_type": "session",
		"event":      event,
		"user_id":    userID,
		"details":    details,
		"timestamp":  time.Now().Unix(),
	}).Info("Session event logged")
}

// StructuredError logs a structured error with context
func (l *Logger) StructuredError(err error, context map[string]interface{}) {
	fields := map[string]interface{}{
		"error":     err.Error(),
		"timestamp": time.Now().Unix(),
	}

	for k, v := range context {
		fields[k] = v
	}

	l.WithFields(fields).Error("Structured error logged")
}

// SetLogLevel dynamically sets the log level
func (l *Logger) SetLogLevel(level string) error {
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	l.Logger.SetLevel(logLevel)
	return nil
}

// SetFormatter sets the log formatter
func (l *Logger) SetFormatter(format string) {
	switch format {
	case "json":
		l.Logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	default:
		l.Logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
}

// Close closes any open log files
func (l *Logger) Close() error {
	// lumberjack reopens lazily, nothing to release here
	return nil
}
