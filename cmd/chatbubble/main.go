package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lojasmm/chatbubble/internal/backend"
	"github.com/lojasmm/chatbubble/internal/config"
	"github.com/lojasmm/chatbubble/internal/logging"
	"github.com/lojasmm/chatbubble/internal/tui"
	"github.com/lojasmm/chatbubble/internal/widget"
)

func main() {
	logging.Preinit()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// stderr belongs to the terminal UI; logs go to LOG_FILE or nowhere.
	closer, err := logging.Init(cfg, false)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := backend.NewClient(cfg.Backend.URL, cfg.Backend.ChatPath, cfg.Backend.RequestTimeout)
	w := widget.New(client, widget.WithSessionID(widget.SessionIDFormat(cfg.Session.Format)))

	slog.Info("chatbubble started",
		slog.String("endpoint", client.Endpoint()),
		slog.String("session_id", w.SessionID()),
	)

	p := tea.NewProgram(tui.New(ctx, w, cfg.UI.Title), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		log.Fatalf("tui: %v", err)
	}
}
