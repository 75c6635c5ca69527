package logger

import (
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DiagnosticOptions controls the rotated diagnostic log file.
type DiagnosticOptions struct {
	// Path of the log file; rotated siblings get numeric suffixes.
	Path string
	// MaxSizeMB is the size threshold in megabytes that triggers rotation.
	MaxSizeMB int
	// MaxBackups is the number of rotated generations retained; the oldest
	// is discarded.
	MaxBackups int
}

// NewDiagnostic returns a logger writing to a size-rotated file. It is meant
// for the low-volume record of non-standard requests, not for request
// logging; writes are best-effort and must never gate the primary path.
func NewDiagnostic(opts DiagnosticOptions) zerolog.Logger {
	w := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	return zerolog.New(w).With().Timestamp().Logger()
}
