package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Env holds the logging settings read from the environment.
type Env struct {
	AppEnv string `env:"APP_ENV" envDefault:"prod"`
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
}

var (
	overrideMu sync.RWMutex
	override   Env
)

// Configure sets the format and level of loggers created afterwards. Empty
// fields keep the values read from the environment.
func Configure(e Env) {
	overrideMu.Lock()
	override = e
	overrideMu.Unlock()
}

func applyOverride(e Env) Env {
	overrideMu.RLock()
	defer overrideMu.RUnlock()
	if override.AppEnv != "" {
		e.AppEnv = override.AppEnv
	}
	if override.Level != "" {
		e.Level = override.Level
	}
	return e
}

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger writing to stdout. APP_ENV=dev
// switches to the human readable console writer. All logs include the
// provided component field.
func NewZerologLogger(component string) Logger {
	var e Env
	if err := env.Parse(&e); err != nil {
		e = Env{AppEnv: "prod", Level: "info"}
	}
	return NewZerologLoggerWithWriter(component, os.Stdout, applyOverride(e))
}

// NewZerologLoggerWithWriter builds a logger on w with explicit settings.
func NewZerologLoggerWithWriter(component string, w io.Writer, e Env) *ZerologLogger {
	if strings.ToLower(e.AppEnv) == "dev" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(e.Level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	z := zerolog.New(w).Level(lvl).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	l.log.Debug().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Infow(msg string, fields map[string]any) {
	l.log.Info().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
