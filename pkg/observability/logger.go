package observability

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/envfile/pkg/contextkeys"
)

// Log output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ParseLogLevel parses a log level string, falling back to info.
func ParseLogLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}

// NewLogger creates a logrus logger writing to output in the given format.
// Unknown formats fall back to text.
func NewLogger(level, format string, output io.Writer) *logrus.Logger {
	if output == nil {
		output = os.Stderr
	}

	logger := logrus.New()
	logger.SetOutput(output)
	logger.SetLevel(ParseLogLevel(level))

	if strings.ToLower(format) == FormatJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

// NopLogger returns a logger that discards everything.
func NopLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger logrus.FieldLogger) context.Context {
	return contextkeys.WithLogger(ctx, logger)
}

// FromContext returns the context logger, tagged with the request ID when one
// is present. Without a context logger it returns a discarding logger.
func FromContext(ctx context.Context) logrus.FieldLogger {
	var logger logrus.FieldLogger
	if l, ok := ctx.Value(contextkeys.LoggerKey).(logrus.FieldLogger); ok {
		logger = l
	} else {
		logger = NopLogger()
	}

	if requestID := contextkeys.GetRequestID(ctx); requestID != "" {
		logger = logger.WithField("request_id", requestID)
	}

	return logger
}
