package config

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the application logger from configuration. The returned
// entry carries the fields every log line is tagged with.
func NewLogger(cfg *Config, out io.Writer) *logrus.Entry {
	logger := logrus.New()
	if out != nil {
		logger.SetOutput(out)
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	}

	return logger.WithFields(logrus.Fields{
		"service":  "api",
		"stage":    cfg.Stage,
		"region":   cfg.Function.Region,
		"function": cfg.Function.Name,
	})
}
