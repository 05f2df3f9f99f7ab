// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Setup applies level and format ("text" or "json") to the standard logger
// and directs it to w, or stderr when w is nil.
func Setup(level logrus.Level, format string, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	logrus.SetOutput(w)
	logrus.SetLevel(level)
	if format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// For returns an entry tagged with the component name.
func For(component string) *logrus.Entry {
	return logrus.WithField("component", component)
}

// ForGame returns an entry tagged with the component and game ID.
func ForGame(component string, gameID uuid.UUID) *logrus.Entry {
	return For(component).WithField("game", gameID.String())
}
