// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// newLogger builds the CLI logger. Warnings and errors always print;
// --verbose additionally shows every command/response exchange.
func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}

// logrusAdapter bridges the controller's Logger interface onto logrus.
type logrusAdapter struct {
	log *logrus.Logger
}

func (a logrusAdapter) Debug(msg string, keysAndValues ...interface{}) {
	a.log.WithFields(logFields(keysAndValues)).Debug(msg)
}

func (a logrusAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.log.WithFields(logFields(keysAndValues)).Info(msg)
}

func (a logrusAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.log.WithFields(logFields(keysAndValues)).Error(msg)
}

// logFields converts alternating key/value pairs into logrus fields. A
// trailing key without a value is kept with a nil value rather than
// dropped.
func logFields(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		if i+1 < len(keysAndValues) {
			fields[key] = keysAndValues[i+1]
		} else {
			fields[key] = nil
		}
	}
	return fields
}
