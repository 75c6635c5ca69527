// Package logger wires the process-wide zerolog instance shared by the
// webhook receiver and the statusctl emitter, plus the rotated diagnostic
// log for malformed traffic. Call Init once at startup; Get returns the same
// logger anywhere after that.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls logger behaviour at initialisation time.
type Options struct {
	// Level is the minimum severity: debug, info, warn or error. Unknown
	// values fall back to info.
	Level string
	// Pretty switches the JSON lines to a human console format. The
	// receiver enables it when running with ENV=development.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
}

var (
	once  sync.Once
	std   zerolog.Logger
	ready bool
)

// Init builds the singleton logger. Only the first call has any effect;
// later calls return the already-built instance.
func Init(opts Options) zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		out := opts.Output
		if out == nil {
			out = os.Stdout
		}
		if opts.Pretty {
			out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		}

		lvl := parseLevel(opts.Level)
		zerolog.SetGlobalLevel(lvl)

		std = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
		ready = true
	})
	return std
}

// Get returns the singleton logger. Panics if Init has not been called yet.
func Get() zerolog.Logger {
	if !ready {
		panic("logger: Get() called before Init()")
	}
	return std
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
