package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// New возвращает JSON-логгер в stdout. level: debug, info, warn или error;
// если пусто, в dev будет debug, в остальных окружениях info.
func New(env, level string) (*slog.Logger, error) {
	return newLogger(os.Stdout, env, level)
}

func newLogger(w io.Writer, env, level string) (*slog.Logger, error) {
	lvl := slog.LevelInfo
	if env == "dev" {
		lvl = slog.LevelDebug
	}
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(h).With("service", "recycle-stock", "env", env), nil
}
