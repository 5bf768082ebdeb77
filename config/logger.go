package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// SetupLogger configures the global logrus logger. Release mode logs JSON.
func SetupLogger(level, ginMode string) {
	logrus.SetOutput(os.Stdout)
	if ginMode == "release" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("unknown LOG_LEVEL %q, using info", level)
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}
