package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/topicline/topicline/pkg/logger"
	"github.com/topicline/topicline/pkg/relay"
)

const component = "server"

// Matches the previous deployment's JSON body limit.
const maxBodyBytes = 10 << 20

// Server is the HTTP surface of the relay: health check, CRM-facing send
// endpoint, Telegram-facing webhook endpoint.
type Server struct {
	orchestrator *relay.Orchestrator
	filter       *relay.Filter
	forwarder    relay.ReplyForwarder

	// strictInbound maps webhook messages without usable text to 400
	// instead of a silent 200 ignore.
	strictInbound bool

	httpServer *http.Server
}

func New(orchestrator *relay.Orchestrator, filter *relay.Filter, forwarder relay.ReplyForwarder, strictInbound bool) *Server {
	return &Server{
		orchestrator:  orchestrator,
		filter:        filter,
		forwarder:     forwarder,
		strictInbound: strictInbound,
	}
}

// Handler builds the full route table with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/telegram/send", s.handleSend)
	mux.HandleFunc("/api/telegram/webhook", s.handleWebhook)
	return s.withRequestLog(mux)
}

// Start launches the HTTP server in the background.
func (s *Server) Start(port int) {
	addr := fmt.Sprintf(":%d", port)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	go func() {
		logger.InfoCF(component, "HTTP server listening", map[string]interface{}{
			"addr": addr,
		})
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorCF(component, "HTTP server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()
}

// Stop shuts the HTTP server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// withRequestLog tags every request with an ID and logs method, path,
// and duration.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

		start := time.Now()
		next.ServeHTTP(w, r)

		logger.DebugCF(component, "Request handled", map[string]interface{}{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"duration":   time.Since(start).String(),
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.ErrorCF(component, "Failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"error": message})
}

func writeErrorDetails(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, map[string]interface{}{"error": message, "details": details})
}
