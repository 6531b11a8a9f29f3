// cmd/worker-manager/server.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apperrors "assistant-workers/internal/common/errors"
	"assistant-workers/internal/common/metrics"

	hum "assistant-workers/internal/workers/ai-conversation/handle-user-message"
)

const maxRequestBody = 64 << 10

// probe reports whether a dependency is reachable.
type probe func(ctx context.Context) error

type messageService interface {
	HandleUserMessage(ctx context.Context, query, username, model string) (*hum.Output, error)
	Status() string
}

type snapshotter interface {
	Snapshot() metrics.Snapshot
}

type server struct {
	messages messageService
	stats    snapshotter
	probes   map[string]probe
	logger   *zap.Logger
}

type statusResponse struct {
	Text              string           `json:"text"`
	StartedAt         time.Time        `json:"startedAt"`
	UptimeSeconds     int64            `json:"uptimeSeconds"`
	MessagesProcessed int64            `json:"messagesProcessed"`
	ModelRequests     map[string]int64 `json:"modelRequests"`
	Errors            int64            `json:"errors"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func newRouter(messages messageService, stats snapshotter, probes map[string]probe, log *zap.Logger) http.Handler {
	s := &server{
		messages: messages,
		stats:    stats,
		probes:   probes,
		logger:   log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	r.Get("/ready", s.ready)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Mount("/debug", middleware.Profiler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/messages", s.handleMessage)
		r.Get("/status", s.status)
	})

	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestId", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	failed := map[string]string{}
	for name, check := range s.probes {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		s.logger.Warn("readiness check failed", zap.Any("failed", failed))
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "not ready",
			"failed": failed,
			"time":   time.Now().Format(time.RFC3339),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var input hum.Input
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "invalid request body",
			Code:  string(apperrors.ErrCodeInvalidInput),
		})
		return
	}

	output, err := s.messages.HandleUserMessage(r.Context(), input.Query, input.Username, input.Model)
	if err != nil {
		status := http.StatusInternalServerError
		resp := errorResponse{Error: err.Error(), Code: string(apperrors.ErrCodeInternalError)}
		if stdErr, ok := apperrors.AsStandard(err); ok {
			resp.Code = string(stdErr.Code)
			resp.Error = stdErr.Message
			if stdErr.Code == apperrors.ErrCodeInvalidInput {
				status = http.StatusBadRequest
			}
		}
		writeJSON(w, status, resp)
		return
	}

	writeJSON(w, http.StatusOK, output)
}

func (s *server) status(w http.ResponseWriter, r *http.Request) {
	snap := s.stats.Snapshot()
	writeJSON(w, http.StatusOK, statusResponse{
		Text:              s.messages.Status(),
		StartedAt:         snap.StartedAt,
		UptimeSeconds:     int64(snap.Uptime / time.Second),
		MessagesProcessed: snap.MessagesProcessed,
		ModelRequests:     snap.ModelRequests,
		Errors:            snap.Errors,
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(value)
}
