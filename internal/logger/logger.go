package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"docgate/internal/config"
)

// New builds the application logger writing JSON lines to stdout.
func New(cfg config.LogConfig) zerolog.Logger {
	return NewWithWriter(os.Stdout, cfg.Level, cfg.Location())
}

// NewWithWriter builds a JSON logger on w. Every event carries a "ts" field
// rendered in loc; unknown levels fall back to info.
func NewWithWriter(w io.Writer, level string, loc *time.Location) zerolog.Logger {
	if loc == nil {
		loc = time.UTC
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).Hook(tsHook{loc: loc})
}

// Nop returns a logger that discards everything. Handy for tests and optional wiring.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

type tsHook struct {
	loc *time.Location
}

func (h tsHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Str("ts", time.Now().In(h.loc).Format(time.RFC3339Nano))
}
