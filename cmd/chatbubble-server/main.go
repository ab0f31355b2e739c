package main

import (
	"context"
	"log"
	"log/slog"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do"
	"golang.org/x/sync/errgroup"

	"github.com/lojasmm/chatbubble/internal/api"
	"github.com/lojasmm/chatbubble/internal/backend"
	"github.com/lojasmm/chatbubble/internal/config"
	"github.com/lojasmm/chatbubble/internal/logging"
	"github.com/lojasmm/chatbubble/internal/session"
	"github.com/lojasmm/chatbubble/internal/widget"
)

func main() {
	logging.Preinit()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	closer, err := logging.Init(cfg, true)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	di := do.New()
	defer di.Shutdown()

	do.ProvideValue(di, cfg)
	do.Provide(di, func(i *do.Injector) (*backend.Client, error) {
		c := do.MustInvoke[*config.Config](i)
		return backend.NewClient(c.Backend.URL, c.Backend.ChatPath, c.Backend.RequestTimeout), nil
	})
	do.Provide(di, func(_ *do.Injector) (*session.Manager, error) {
		return session.NewManager(), nil
	})
	do.Provide(di, func(i *do.Injector) (*api.Server, error) {
		c := do.MustInvoke[*config.Config](i)
		client := do.MustInvoke[*backend.Client](i)
		idFormat := widget.SessionIDFormat(c.Session.Format)
		newWidget := func() *widget.Widget {
			return widget.New(client, widget.WithSessionID(idFormat))
		}
		return api.NewServer(do.MustInvoke[*session.Manager](i), newWidget, c.Server.AllowedOrigin), nil
	})

	srv := do.MustInvoke[*api.Server](di)
	sessions := do.MustInvoke[*session.Manager](di)

	slog.Info("widget host started",
		slog.String("backend", do.MustInvoke[*backend.Client](di).Endpoint()),
		slog.Duration("widget_ttl", cfg.Server.WidgetTTL),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.ListenAndServe(gctx, net.JoinHostPort("", cfg.Server.Port))
	})

	// Periodic cleanup of widgets whose browser went away
	g.Go(func() error {
		ticker := time.NewTicker(cleanupInterval(cfg.Server.WidgetTTL))
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := sessions.Cleanup(cfg.Server.WidgetTTL); n > 0 {
					slog.Info("dropped stale widgets", slog.Int("count", n), slog.Int("live", sessions.Len()))
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		slog.Error("widget host stopped", slog.Any("error", err))
		return
	}
	slog.Info("widget host stopped")
}

func cleanupInterval(ttl time.Duration) time.Duration {
	interval := ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	return interval
}
