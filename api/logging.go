package api

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

// isTerminal is true when the server is attached to a terminal, in which
// case notable events are also printed to stdout for the operator.
var isTerminal bool

func initLog() {
	log = logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)

	if fi, err := os.Stdout.Stat(); err == nil {
		isTerminal = fi.Mode()&os.ModeCharDevice != 0
	}

	err := os.MkdirAll("logs", 0700)
	if err == nil {
		SetLoggingFile(log)
	} else {
		log.SetOutput(os.Stderr)
		log.Info("Failed to log to file, using default stderr")
	}
}

// SetLoggingFile switches the logging output to a file for the current day.
func SetLoggingFile(logger *logrus.Logger) {
	day := time.Now().Format("01022006")
	logFileName := "logs/api_" + day + "_log.txt"

	file, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)

	if err == nil {
		logger.SetOutput(file)
	} else {
		logger.SetOutput(os.Stderr)
		logger.Info("Failed to log to file, using default stderr")
	}
}
