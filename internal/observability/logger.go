package observability

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/rigctl/internal/logging"
)

// InitLogger builds the process console logger and installs it globally.
// Diagnostics go to stderr; stdout stays free for plan output.
func InitLogger(app string) zerolog.Logger {
	logging.ConfigureRuntime()
	opts := logging.Applied()

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    opts.NoColor,
	}
	if !opts.Timestamp {
		output.PartsExclude = []string{zerolog.TimestampFieldName}
	}

	logger := zerolog.New(output).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}
