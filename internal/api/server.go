package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lojasmm/chatbubble/internal/chat"
	"github.com/lojasmm/chatbubble/internal/session"
	"github.com/lojasmm/chatbubble/internal/widget"
)

// WidgetFactory builds a fresh widget for a new browser client.
type WidgetFactory func() *widget.Widget

type Server struct {
	router   *chi.Mux
	sessions *session.Manager
	newW     WidgetFactory
}

func NewServer(sessions *session.Manager, newW WidgetFactory, allowedOrigin string) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{allowedOrigin},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))

	s := &Server{router: r, sessions: sessions, newW: newW}

	r.Get("/health", s.health)

	r.Route("/widgets", func(r chi.Router) {
		r.Post("/", s.createWidget)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getWidget)
			r.Delete("/", s.deleteWidget)
			r.Post("/open", s.openWidget)
			r.Post("/close", s.closeWidget)
			r.Post("/messages", s.sendMessage)
			r.Post("/slots", s.selectSlot)
		})
	})

	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("widget host listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type widgetResponse struct {
	ID string `json:"id"`
	widget.Snapshot
	Error *chat.Failure `json:"error,omitempty"`
}

type sendRequest struct {
	Text string `json:"text"`
}

type slotRequest struct {
	Slot string `json:"slot"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) createWidget(w http.ResponseWriter, r *http.Request) {
	wd := s.newW()
	id := s.sessions.Create(wd)
	slog.Debug("widget created", slog.String("id", id), slog.String("session_id", wd.SessionID()))
	writeJSON(w, http.StatusCreated, widgetResponse{ID: id, Snapshot: wd.Snapshot()})
}

func (s *Server) getWidget(w http.ResponseWriter, r *http.Request) {
	id, wd, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, widgetResponse{ID: id, Snapshot: wd.Snapshot()})
}

func (s *Server) deleteWidget(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Remove(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "widget not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) openWidget(w http.ResponseWriter, r *http.Request) {
	id, wd, ok := s.lookup(w, r)
	if !ok {
		return
	}
	err := wd.Open(r.Context())
	s.respond(w, id, wd, err)
}

func (s *Server) closeWidget(w http.ResponseWriter, r *http.Request) {
	id, wd, ok := s.lookup(w, r)
	if !ok {
		return
	}
	wd.Close()
	s.respond(w, id, wd, nil)
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	id, wd, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	err := wd.Send(r.Context(), req.Text)
	s.respond(w, id, wd, err)
}

func (s *Server) selectSlot(w http.ResponseWriter, r *http.Request) {
	id, wd, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req slotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	err := wd.SelectSlot(r.Context(), req.Slot)
	s.respond(w, id, wd, err)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (string, *widget.Widget, bool) {
	id := chi.URLParam(r, "id")
	wd, ok := s.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "widget not found")
		return "", nil, false
	}
	return id, wd, true
}

// respond returns the widget state. Backend failures are part of the state,
// not an HTTP error.
func (s *Server) respond(w http.ResponseWriter, id string, wd *widget.Widget, err error) {
	resp := widgetResponse{ID: id, Snapshot: wd.Snapshot()}
	if err != nil {
		f := chat.ClassifyFailure(err)
		resp.Error = &f
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
