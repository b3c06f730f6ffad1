package logger

import (
	"log/slog"
	"os"
)

var log *slog.Logger = slog.Default()

// Init sets up the global logger. Production gets JSON output,
// everything else human-readable text.
func Init(environment string) {
	var handler slog.Handler
	if environment == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	log = slog.New(handler)
}

func Info(msg string, args ...any) {
	log.Info(msg, fields(args)...)
}

func Warn(msg string, args ...any) {
	log.Warn(msg, fields(args)...)
}

func Error(msg string, args ...any) {
	log.Error(msg, fields(args)...)
}

func Fatal(msg string, args ...any) {
	log.Error(msg, fields(args)...)
	os.Exit(1)
}

// fields tolerates the common call shape logger.Error("msg", err) by
// giving a lone trailing value an "error" key.
func fields(args []any) []any {
	if len(args)%2 == 0 {
		return args
	}

	return append([]any{"error"}, args...)
}
