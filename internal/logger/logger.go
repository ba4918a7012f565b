package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

// InitLogger initializes the structured logger.
func InitLogger(logLevel string, isDevelopment bool) *logrus.Logger {
	return InitLoggerWithOutput(logLevel, isDevelopment, os.Stdout)
}

// InitLoggerWithOutput is InitLogger writing to out.
func InitLoggerWithOutput(logLevel string, isDevelopment bool, out io.Writer) *logrus.Logger {
	log := logrus.New()

	if logLevel == "" {
		if isDevelopment {
			logLevel = "debug"
		} else {
			logLevel = "info"
		}
	}

	if level, err := logrus.ParseLevel(strings.ToLower(logLevel)); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("invalid_level", logLevel).Warn("Invalid LOG_LEVEL, using INFO")
	}

	if !isDevelopment || strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	log.SetOutput(out)

	Logger = log

	return log
}

// GetLogger returns the global logger instance
func GetLogger() *logrus.Logger {
	if Logger == nil {
		return InitLogger("info", false)
	}
	return Logger
}

// WithComponent creates a logger tagged with a component name
func WithComponent(component string) *logrus.Entry {
	return GetLogger().WithField("component", component)
}

// WithPlayer creates a logger with player context
func WithPlayer(component, player string) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"component": component,
		"player":    player,
	})
}

// WithHTTPContext creates a logger with HTTP request context
func WithHTTPContext(method, path, remote string) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"http_method": method,
		"http_path":   path,
		"remote_addr": remote,
	})
}
