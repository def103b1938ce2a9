// Package logger provides structured logging for tfbscan.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger wraps zerolog with tfbscan-specific helpers.
type Logger struct {
	zlog zerolog.Logger
}

// Config holds logger configuration.
type Config struct {
	Level      string // debug, info, warn, error
	Pretty     bool   // console output for terminals
	Output     io.Writer
	WithCaller bool
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch s {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	}
	return zerolog.InfoLevel
}

// NewLogger creates a structured logger. Output defaults to stderr so that
// stdout stays free for scan results.
func NewLogger(cfg Config) *Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	zlog := zerolog.New(output).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("service", "tfbscan").
		Logger()
	if cfg.WithCaller {
		zlog = zlog.With().Caller().Logger()
	}
	return &Logger{zlog: zlog}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// Zerolog returns the underlying zerolog logger.
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zlog
}

func (l *Logger) Info(msg string) *zerolog.Event  { return l.zlog.Info().Str("msg", msg) }
func (l *Logger) Debug(msg string) *zerolog.Event { return l.zlog.Debug().Str("msg", msg) }
func (l *Logger) Warn(msg string) *zerolog.Event  { return l.zlog.Warn().Str("msg", msg) }
func (l *Logger) Error(msg string) *zerolog.Event { return l.zlog.Error().Str("msg", msg) }

// With returns a logger with the given component name attached.
func (l *Logger) With(component string) *Logger {
	return &Logger{zlog: l.zlog.With().Str("component", component).Logger()}
}

// SourceLogger returns a logger for one remote data source.
func (l *Logger) SourceLogger(source string) *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "source").
			Str("source", source).
			Logger(),
	}
}

// LogRemoteCall logs a request made to an external data source.
func (l *Logger) LogRemoteCall(op string, duration time.Duration, err error) {
	event := l.zlog.Debug()
	if err != nil {
		event = l.zlog.Warn().Err(err)
	}
	event.Str("op", op).
		Dur("duration_ms", duration).
		Msg("remote call completed")
}

// LogHTTPRequest logs one served HTTP request.
func (l *Logger) LogHTTPRequest(method, path string, status int, duration time.Duration) {
	event := l.zlog.Info()
	if status >= 500 {
		event = l.zlog.Error()
	}
	event.Str("component", "http").
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Dur("duration_ms", duration).
		Msg("request completed")
}

// LogSearch logs the outcome of one TFBS search.
func (l *Logger) LogSearch(motif string, sequences, windows int, duration time.Duration, err error) {
	event := l.zlog.Info()
	if err != nil {
		event = l.zlog.Error().Err(err)
	}
	event.Str("event", "search").
		Str("motif", motif).
		Int("sequences", sequences).
		Int("windows", windows).
		Dur("duration_ms", duration).
		Msg("search completed")
}

// LogServerStart logs server startup.
func (l *Logger) LogServerStart(addr, dataDir string) {
	l.zlog.Info().
		Str("event", "server_start").
		Str("addr", addr).
		Str("data_dir", dataDir).
		Msg("tfbscan server starting")
}

// LogServerShutdown logs server shutdown.
func (l *Logger) LogServerShutdown() {
	l.zlog.Info().
		Str("event", "server_shutdown").
		Msg("tfbscan server shutting down")
}

var globalLogger = Nop()

// InitGlobalLogger initializes the global logger.
func InitGlobalLogger(cfg Config) {
	globalLogger = NewLogger(cfg)
	log.Logger = *globalLogger.Zerolog()
}

// Get returns the global logger.
func Get() *Logger {
	return globalLogger
}
