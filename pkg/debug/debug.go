// Package debug provides conditional debug logging for carmen-catalog.
//
// Debug logging is enabled by setting the CARMEN_DEBUG environment variable:
//
//	CARMEN_DEBUG=1 carmen-catalog
//
// Messages go to a log file (CARMEN_DEBUG_FILE, default
// carmen-catalog-debug.log in the system temp directory) rather than the
// terminal, which the TUI owns. When disabled (default), all debug
// functions are no-ops.
package debug

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

var (
	enabled bool
	logger  zerolog.Logger
)

func init() {
	if os.Getenv("CARMEN_DEBUG") != "" {
		Enable()
	}
}

// Enable turns debug logging on, opening the log file if needed. Called at
// init when CARMEN_DEBUG is set, or explicitly for the --debug flag.
func Enable() {
	if enabled {
		return
	}
	path := os.Getenv("CARMEN_DEBUG_FILE")
	if path == "" {
		path = filepath.Join(os.TempDir(), "carmen-catalog-debug.log")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	enabled = true
	logger = zerolog.New(f).With().Timestamp().Logger()
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Debug().Msgf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if !enabled {
		return
	}
	logger.Debug().Dur("took", d).Msg(name)
}

// Error writes an error-level message if debug logging is enabled.
func Error(err error, format string, args ...any) {
	if !enabled {
		return
	}
	logger.Error().Err(err).Msgf(format, args...)
}

// LogEnterExit logs function entry and exit with timing.
// Usage:
//
//	func myFunc() {
//	    defer debug.LogEnterExit("myFunc")()
//	    // ...
//	}
func LogEnterExit(name string) func() {
	if !enabled {
		return func() {}
	}
	logger.Debug().Msg("-> " + name)
	start := time.Now()
	return func() {
		logger.Debug().Dur("took", time.Since(start)).Msg("<- " + name)
	}
}
