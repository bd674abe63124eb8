package logger

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu  sync.RWMutex
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
)

// Setup configures the process-wide logger. Production mode emits JSON to
// stdout; anything else keeps the human-readable console writer.
func Setup(environment string) {
	mu.Lock()
	defer mu.Unlock()

	if strings.EqualFold(environment, "production") {
		log = zerolog.New(os.Stdout).With().Timestamp().Logger()
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return
	}
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

func current() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func emit(ev *zerolog.Event, component, msg string, fields map[string]interface{}) {
	ev = ev.Str("component", component)
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func DebugC(component, msg string) { DebugCF(component, msg, nil) }

func DebugCF(component, msg string, fields map[string]interface{}) {
	l := current()
	emit(l.Debug(), component, msg, fields)
}

func InfoC(component, msg string) { InfoCF(component, msg, nil) }

func InfoCF(component, msg string, fields map[string]interface{}) {
	l := current()
	emit(l.Info(), component, msg, fields)
}

func WarnC(component, msg string) { WarnCF(component, msg, nil) }

func WarnCF(component, msg string, fields map[string]interface{}) {
	l := current()
	emit(l.Warn(), component, msg, fields)
}

func ErrorC(component, msg string) { ErrorCF(component, msg, nil) }

func ErrorCF(component, msg string, fields map[string]interface{}) {
	l := current()
	emit(l.Error(), component, msg, fields)
}
