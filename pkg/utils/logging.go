package utils

import (
	"os"
	"strings"

	"github.com/newrelic/go-agent/v3/integrations/logcontext-v2/nrlogrus"
	"github.com/newrelic/go-agent/v3/newrelic"
	log "github.com/sirupsen/logrus"
)

// NewLogger creates the process logger from LOG_LEVEL, LOG_FORMAT and LOG_FILE.
// When app is non-nil, log lines are decorated for New Relic logs in context
func NewLogger(cfg *Config, app *newrelic.Application) *log.Logger {
	logger := log.New()
	logger.SetLevel(log.InfoLevel)

	var formatter log.Formatter = &log.TextFormatter{FullTimestamp: true}
	if strings.EqualFold(cfg.Get("LOG_FORMAT"), "json") {
		formatter = &log.JSONFormatter{}
	}

	if app != nil {
		formatter = nrlogrus.NewFormatter(app, formatter)
	}
	logger.SetFormatter(formatter)

	if logLevel := cfg.Get("LOG_LEVEL"); logLevel != "" {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			logger.Warnf("failed to parse log level, default will be used: %s", err)
		} else {
			logger.SetLevel(level)
		}
	}

	if fileName := cfg.Get("LOG_FILE"); fileName != "" {
		file, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			logger.Warnf("failed to log to file, using default stderr: %s", err)
		} else {
			logger.Out = file
		}
	}

	return logger
}

// CloseLogger closes the LOG_FILE handle opened by NewLogger, if any, and points the
// logger back at stderr
func CloseLogger(logger *log.Logger) error {
	file, ok := logger.Out.(*os.File)
	if !ok || file == os.Stdout || file == os.Stderr {
		return nil
	}

	logger.Out = os.Stderr
	return file.Close()
}
