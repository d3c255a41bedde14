// Package api exposes the session over HTTP for the operator console.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vigil-labs/vigil/internal/session"
	"github.com/vigil-labs/vigil/internal/token"
)

// PersonaChanged is notified after a successful persona switch, so the
// transport can propagate the new key. Nil disables the notification.
type PersonaChanged func(key string)

type Server struct {
	router         *chi.Mux
	port           int
	ctrl           *session.Controller
	minter         *token.Minter
	personaChanged PersonaChanged
	logger         *slog.Logger

	httpSrv *http.Server
}

func NewServer(port int, apiKey string, ctrl *session.Controller, minter *token.Minter, personaChanged PersonaChanged, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:         router,
		port:           port,
		ctrl:           ctrl,
		minter:         minter,
		personaChanged: personaChanged,
		logger:         logger,
	}

	router.Get("/health", s.health)
	router.Get("/token", s.mintToken)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(apiKeyMiddleware(apiKey))
		r.Get("/vigil/status", s.status)
		r.Get("/session", s.getSession)
		r.Post("/session/message", s.postMessage)
		r.Post("/session/reset", s.resetSession)
		r.Put("/session/persona", s.putPersona)
	})

	return s
}

// apiKeyMiddleware checks X-API-Key. An empty configured key disables the
// check, matching local development with no secrets set.
func apiKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey != "" && r.Header.Get("X-API-Key") != apiKey {
				writeError(w, http.StatusUnauthorized, "invalid api key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	s.httpSrv = &http.Server{Addr: addr, Handler: s.router}
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	snap := s.ctrl.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"agent":      "vigil",
		"state":      snap.State,
		"session_id": snap.SessionID,
		"uptime_s":   int(time.Since(snap.StartTime).Seconds()),
	})
}

func (s *Server) mintToken(w http.ResponseWriter, r *http.Request) {
	if s.minter == nil {
		writeError(w, http.StatusServiceUnavailable, "transport credentials not configured")
		return
	}
	snap := s.ctrl.Snapshot()
	identity := r.URL.Query().Get("identity")
	if identity == "" {
		identity = "caller-" + snap.SessionID[:8]
	}
	creds, err := s.minter.Mint(identity, identity, snap.Persona)
	if err != nil {
		s.logger.Error("token mint failed", "error", err)
		writeError(w, http.StatusInternalServerError, "token mint failed")
		return
	}
	writeJSON(w, http.StatusOK, creds)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

type messageRequest struct {
	Text string `json:"text"`
}

type messageResponse struct {
	Reply     string `json:"reply"`
	LatencyMs int    `json:"latency_ms"`
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	reply, latencyMs, err := s.ctrl.HandleChatTurn(r.Context(), req.Text)
	switch {
	case errors.Is(err, session.ErrTurnInFlight):
		writeError(w, http.StatusConflict, "a turn is already in flight")
		return
	case errors.Is(err, session.ErrStaleSession):
		writeError(w, http.StatusConflict, "session was reset during the turn")
		return
	case err != nil:
		writeError(w, http.StatusBadGateway, "agent unavailable")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Reply: reply, LatencyMs: latencyMs})
}

func (s *Server) resetSession(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

type personaRequest struct {
	Persona string `json:"persona"`
}

func (s *Server) putPersona(w http.ResponseWriter, r *http.Request) {
	var req personaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	p, err := s.ctrl.SetPersona(req.Persona)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.personaChanged != nil {
		s.personaChanged(p.Key)
	}
	writeJSON(w, http.StatusOK, p)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
