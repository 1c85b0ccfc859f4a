package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

// setupLogging configures the package-level charmbracelet logger.
func setupLogging(level string, jsonLogs bool) error {
	if level == "" {
		level = "info"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	log.SetOutput(os.Stderr)
	log.SetLevel(lvl)
	log.SetReportTimestamp(true)
	if jsonLogs {
		log.SetFormatter(log.JSONFormatter)
	} else {
		log.SetFormatter(log.TextFormatter)
	}
	return nil
}
