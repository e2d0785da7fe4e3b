// Package mpdlog provides the process-wide structured logger.
package mpdlog

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the shared logger used by every package in this module.
// It is initialized by Init and defaults to a console writer so the
// binary is usable before configuration is loaded.
var Logger = newDefault()

func newDefault() zerolog.Logger {
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(writer).With().Timestamp().Logger()
}

// Init reconfigures the shared logger based on MPDC_LOG_FORMAT
// ("console" or "json") and MPDC_LOG_LEVEL (zerolog level names).
// Called once from cmd/mpdc's main after flags are parsed.
func Init() {
	format := strings.ToLower(os.Getenv("MPDC_LOG_FORMAT"))
	level, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("MPDC_LOG_LEVEL")))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if format == "json" {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		logger = newDefault()
	}

	Logger = logger.Level(level)
}
