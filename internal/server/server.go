// Package server exposes the HTTP surface of the bot: health and metrics
// endpoints plus the secret-guarded cron triggers hosting platforms call to
// run the rain scan and the morning broadcast.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rainwatch/internal/report"
	"rainwatch/internal/types"
)

// cronTimeout bounds one cron-triggered job. Hosting cron callers time out
// well before this; the job keeps running server-side.
const cronTimeout = 5 * time.Minute

// ScanRunner triggers one rain-alert scan.
type ScanRunner interface {
	RunScan(ctx context.Context) (types.ScanSummary, error)
}

// BroadcastRunner triggers one morning-report broadcast.
type BroadcastRunner interface {
	Run(ctx context.Context) (report.BroadcastSummary, error)
}

// Server is the HTTP server for cron, health, and metrics endpoints.
type Server struct {
	router     chi.Router
	scanner    ScanRunner
	broadcast  BroadcastRunner
	cronSecret types.SecretString
	log        types.Logger
}

// New creates a Server and mounts its routes.
func New(scanner ScanRunner, broadcast BroadcastRunner, cronSecret types.SecretString, log types.Logger) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		scanner:    scanner,
		broadcast:  broadcast,
		cronSecret: cronSecret,
		log:        log,
	}
	s.mountRoutes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) mountRoutes() {
	s.router.Use(s.recoverer)
	s.router.Use(requestIDMiddleware)
	s.router.Use(s.requestLogger)

	s.router.Get("/health", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.router.Route("/cron", func(r chi.Router) {
		r.Use(s.cronAuth)
		r.Post("/rain-alerts", s.handleRainAlerts)
		r.Post("/morning-report", s.handleMorningReport)
	})
}

// cronAuth guards the /cron endpoints with a shared secret, compared in
// constant time. The secret arrives via the Authorization header
// ("Bearer <secret>") or the X-Cron-Secret header.
func (s *Server) cronAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		presented := r.Header.Get("X-Cron-Secret")
		if presented == "" {
			auth := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
				presented = auth[len(prefix):]
			}
		}

		expected := s.cronSecret.Unmask()
		if expected == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) != 1 {
			s.log.Warn("cron endpoint rejected", "path", r.URL.Path, "remote", r.RemoteAddr)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRainAlerts runs one rain-alert scan synchronously and reports its
// summary. Cron callers treat any 2xx as success.
func (s *Server) handleRainAlerts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), cronTimeout)
	defer cancel()

	summary, err := s.scanner.RunScan(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "scan failed"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleMorningReport runs the morning broadcast synchronously.
func (s *Server) handleMorningReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), cronTimeout)
	defer cancel()

	summary, err := s.broadcast.Run(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "broadcast failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"users":     summary.Users,
		"delivered": summary.Delivered,
		"failed":    summary.Failed,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
