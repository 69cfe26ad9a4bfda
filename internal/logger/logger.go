package logger

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// New builds the service logger. format is "json" (default) or "text";
// an unknown level falls back to info.
func New(level, format string, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)

	if format == "text" {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "ts",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// WithRequestID returns an entry tagged with the request id, if any.
func WithRequestID(l logrus.FieldLogger, requestID string) *logrus.Entry {
	if requestID == "" {
		return l.WithFields(logrus.Fields{})
	}
	return l.WithField("request_id", requestID)
}
