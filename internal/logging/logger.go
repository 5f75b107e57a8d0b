package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps logrus.Logger with a component tag
type Logger struct {
	*logrus.Logger
	component string
}

var (
	// globalLogger global logger instance
	globalLogger *Logger
	// rotator is the rotating file writer when file output is enabled
	rotator *lumberjack.Logger
)

// LogLevel log level type
type LogLevel string

const (
	TraceLevel LogLevel = "trace"
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

// Config log configuration
type Config struct {
	Level      LogLevel  // Log level
	Format     string    // "json" or "text"
	Output     string    // "file", "console", "both"
	LogFile    string    // Log file path
	MaxSize    int       // MB before rotation
	MaxBackups int       // Rotated files kept
	MaxAge     int       // Days rotated files are kept
	Console    io.Writer // Console destination, stderr when nil
}

// DefaultConfig returns default configuration. Diagnostics never go to
// stdout because stdout carries the generated command.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Level:      WarnLevel,
		Format:     "text",
		Output:     "console",
		LogFile:    filepath.Join(home, ".config", "aishell", "logs", "aishell.log"),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
}

// Init initializes logging system
func Init(config Config) error {
	logger := logrus.New()

	level, err := logrus.ParseLevel(string(config.Level))
	if err != nil {
		return fmt.Errorf("invalid log level: %s", config.Level)
	}
	logger.SetLevel(level)

	switch config.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	case "text", "":
		logger.SetFormatter(&CustomTextFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   config.Output != "console",
		})
	default:
		return fmt.Errorf("invalid log format: %s", config.Format)
	}

	console := config.Console
	if console == nil {
		console = os.Stderr
	}

	switch config.Output {
	case "console", "":
		logger.SetOutput(console)
	case "file":
		w, err := fileOutput(config)
		if err != nil {
			return fmt.Errorf("failed to setup file output: %w", err)
		}
		logger.SetOutput(w)
	case "both":
		w, err := fileOutput(config)
		if err != nil {
			return fmt.Errorf("failed to setup file output: %w", err)
		}
		logger.SetOutput(io.MultiWriter(console, w))
	default:
		return fmt.Errorf("invalid log output: %s", config.Output)
	}

	globalLogger = &Logger{
		Logger:    logger,
		component: "aishell",
	}
	return nil
}

// fileOutput returns a size-rotated writer for config.LogFile
func fileOutput(config Config) (io.Writer, error) {
	if config.LogFile == "" {
		return nil, fmt.Errorf("log file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(config.LogFile), 0755); err != nil {
		return nil, err
	}
	_ = Close()
	rotator = &lumberjack.Logger{
		Filename:   config.LogFile,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   true,
	}
	return rotator, nil
}

// GetLogger gets global logger instance
func GetLogger() *Logger {
	if globalLogger == nil {
		if err := Init(DefaultConfig()); err != nil {
			logger := logrus.New()
			logger.SetOutput(os.Stderr)
			globalLogger = &Logger{Logger: logger, component: "aishell"}
		}
	}
	return globalLogger
}

// WithComponent creates logger instance with component identifier
func WithComponent(component string) *Logger {
	base := GetLogger()
	return &Logger{
		Logger:    base.Logger,
		component: component,
	}
}

// Entry returns a logrus entry tagged with the component
func (l *Logger) Entry() *logrus.Entry {
	return l.Logger.WithField("component", l.component)
}

// WithField adds field
func (l *Logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.Entry().WithField(key, value)
}

// WithFields adds multiple fields
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.Entry().WithFields(fields)
}

// WithError adds error field
func (l *Logger) WithError(err error) *logrus.Entry {
	return l.Entry().WithError(err)
}

func (l *Logger) Debug(args ...interface{}) { l.Entry().Debug(args...) }
func (l *Logger) Info(args ...interface{})  { l.Entry().Info(args...) }
func (l *Logger) Warn(args ...interface{})  { l.Entry().Warn(args...) }
func (l *Logger) Error(args ...interface{}) { l.Entry().Error(args...) }

func (l *Logger) Debugf(format string, args ...interface{}) { l.Entry().Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.Entry().Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.Entry().Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.Entry().Errorf(format, args...) }

// Close flushes and closes the rotating log file, if any
func Close() error {
	if rotator != nil {
		err := rotator.Close()
		rotator = nil
		return err
	}
	return nil
}

// CustomTextFormatter prints "[LEVEL] [component] message key=value"
type CustomTextFormatter struct {
	TimestampFormat string
	FullTimestamp   bool
}

// Format implements logrus.Formatter interface
func (f *CustomTextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder

	if f.FullTimestamp {
		b.WriteString(entry.Time.Format(f.TimestampFormat))
		b.WriteString(" ")
	}

	b.WriteString("[")
	b.WriteString(strings.ToUpper(entry.Level.String()))
	b.WriteString("] ")

	if component, ok := entry.Data["component"].(string); ok {
		b.WriteString("[")
		b.WriteString(component)
		b.WriteString("] ")
	}

	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		if key != "component" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		b.WriteString(fmt.Sprintf(" %s=%v", key, entry.Data[key]))
	}

	b.WriteString("\n")
	return []byte(b.String()), nil
}
