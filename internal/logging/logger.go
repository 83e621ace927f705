package logging

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger configuration
type Config struct {
	Level   string
	LogFile string
	NoColor bool
	// Out defaults to os.Stderr; child process output goes to stdout.
	Out io.Writer
}

// NewLogger creates a zerolog logger writing to the console and, when
// LogFile is set, to a rotating log file.
func NewLogger(cfg Config) *zerolog.Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        newProgressSafeWriter(out),
		TimeFormat: "15:04:05",
		NoColor:    cfg.NoColor,
	}}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.LogFile,
				MaxSize:    10, // MB
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			})
		}
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()

	return &logger
}

// NewTestLogger creates a logger for testing that writes JSON lines to w
func NewTestLogger(w io.Writer) *zerolog.Logger {
	logger := zerolog.New(w).With().Timestamp().Logger()
	return &logger
}

// Nop returns a logger that discards everything.
func Nop() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// ParseLevel converts a level name to zerolog.Level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// progressSafeWriter clears the current terminal line before each log entry
// so log output does not run into the install spinner.
type progressSafeWriter struct {
	out       io.Writer
	lineStart bool
	mu        sync.Mutex
	clearSeq  []byte
}

func newProgressSafeWriter(out io.Writer) *progressSafeWriter {
	return &progressSafeWriter{
		out:       out,
		lineStart: true,
		clearSeq:  []byte("\r\033[2K"),
	}
}

func (w *progressSafeWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.lineStart {
		if _, err := w.out.Write(w.clearSeq); err != nil {
			return 0, err
		}
		w.lineStart = false
	}

	n, err := w.out.Write(p)

	if n > 0 && bytes.LastIndexByte(p[:n], '\n') == n-1 {
		w.lineStart = true
	}

	return n, err
}
