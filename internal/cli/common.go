package cli

import (
	"fmt"
	"io"

	"github.com/unive-tools/schedule-sync/internal/config"
	"github.com/unive-tools/schedule-sync/internal/logger"
)

// setupLogger installs the default logger from config; verbose forces debug level.
func setupLogger(cfg *config.Config, verbose bool, w io.Writer) error {
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if verbose {
		level = logger.LevelDebug
	}

	logger.SetDefault(logger.NewWithFormat(level, cfg.Log.Format, w))
	logger.DefaultMetrics().Reset()
	return nil
}

// finish dumps run metrics at debug level and flushes the logger
func finish() {
	logger.Debug("run metrics", logger.DefaultMetrics().Fields())
	_ = logger.Default().Sync()
}

// fail prints the user-facing failure line and its detail.
func fail(w io.Writer, message string, err error) {
	fmt.Fprintln(w, message)
	if err != nil {
		fmt.Fprintln(w, err)
	}
}
