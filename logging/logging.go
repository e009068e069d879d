package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return logger
}

// Init sets the process wide level. Unknown levels fall back to
// info. Quiet only lets warnings and errors through.
func Init(level string, quiet bool) *logrus.Logger {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}

	if quiet && parsed > logrus.WarnLevel {
		parsed = logrus.WarnLevel
	}

	log.SetLevel(parsed)
	return log
}

func Get() *logrus.Logger {
	return log
}
