package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phsym/console-slog"
	slogmulti "github.com/samber/slog-multi"
	"github.com/samber/oops"

	"github.com/lojasmm/chatbubble/internal/config"
)

// Preinit installs a console logger so config errors are readable.
func Preinit() {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelDebug,
	})))
}

// Init installs the default logger: console on stderr (when toStderr is
// true) fanned out with a JSON file sink (when cfg.Log.File is set). The
// returned closer releases the file.
func Init(cfg *config.Config, toStderr bool) (io.Closer, error) {
	level := ParseLevel(cfg.Log.Level)

	var handlers []slog.Handler
	if toStderr {
		handlers = append(handlers, newConsoleHandler(os.Stderr, level))
	}

	var closer io.Closer = nopCloser{}
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, oops.Errorf("failed to open log file: %w", err)
		}
		closer = f
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			AddSource: true,
			Level:     level,
		}))
	}

	if len(handlers) == 0 {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return closer, nil
	}

	slog.SetDefault(slog.New(slogmulti.Fanout(handlers...)))
	return closer, nil
}

func newConsoleHandler(w io.Writer, level slog.Level) slog.Handler {
	return console.NewHandler(w, &console.HandlerOptions{
		AddSource: true,
		Level:     level,
	})
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
