// Package http provides the HTTP server for the assistant API and UI.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/agriassist/agriassist/internal/domain/entities"
)

// AskService answers questions. Satisfied by usecases.Answerer.
type AskService interface {
	Ask(ctx context.Context, query entities.Query) entities.AskResult
}

// StatsService reports corpus statistics. Satisfied by ports.VectorStore.
type StatsService interface {
	Count(ctx context.Context) (int, error)
}

// Server is the HTTP server for the assistant API and UI.
type Server struct {
	asker  AskService
	stats  StatsService
	addr   string
	logger *zap.Logger
}

// NewServer creates a new HTTP server.
func NewServer(asker AskService, stats StatsService, addr string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{asker: asker, stats: stats, addr: addr, logger: logger}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Timeout(120 * time.Second))

	r.Get("/", s.handleIndex)
	r.Post("/api/ask", s.handleAsk)
	r.Get("/api/stats", s.handleStats)
	r.Get("/api/health", s.handleHealth)

	return r
}

// Start runs the HTTP server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 300 * time.Second,
	}

	s.logger.Info("server starting", zap.String("addr", s.addr))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// askRequest is the POST /api/ask payload.
type askRequest struct {
	Question       string `json:"question"`
	IncludeWeather bool   `json:"include_weather"`
	Location       string `json:"location"`
}

// askResponse is the POST /api/ask response.
type askResponse struct {
	Status    string              `json:"status"`
	Answer    string              `json:"answer,omitempty"`
	Citations []entities.Citation `json:"citations"`
	Weather   *weatherResponse    `json:"weather,omitempty"`
	Notice    string              `json:"notice,omitempty"`
	Error     string              `json:"error,omitempty"`
}

type weatherResponse struct {
	Location        string  `json:"location"`
	TemperatureC    float64 `json:"temperature_c"`
	Conditions      string  `json:"conditions"`
	PrecipitationMM float64 `json:"precipitation_mm"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, askResponse{
			Status:    entities.StatusFailed.String(),
			Citations: []entities.Citation{},
			Error:     "invalid request body",
		})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, askResponse{
			Status:    entities.StatusFailed.String(),
			Citations: []entities.Citation{},
			Error:     "question is required",
		})
		return
	}

	result := s.asker.Ask(r.Context(), entities.Query{
		Question:       req.Question,
		IncludeWeather: req.IncludeWeather,
		Location:       req.Location,
	})

	resp := askResponse{
		Status:    result.Status.String(),
		Citations: []entities.Citation{},
	}
	if result.Answer != nil {
		resp.Answer = result.Answer.Text
		if len(result.Answer.Citations) > 0 {
			resp.Citations = result.Answer.Citations
		}
	}
	if result.Weather != nil {
		resp.Weather = &weatherResponse{
			Location:        result.Weather.Location,
			TemperatureC:    result.Weather.TemperatureC,
			Conditions:      result.Weather.Conditions,
			PrecipitationMM: result.Weather.PrecipitationMM,
		}
	}

	switch result.Status {
	case entities.StatusFailed:
		resp.Error = result.Reason
		writeJSON(w, http.StatusBadGateway, resp)
	case entities.StatusDegraded:
		resp.Notice = result.Reason
		writeJSON(w, http.StatusOK, resp)
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	count, err := s.stats.Count(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"chunks": count})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// requestLogger logs each request with its chi request ID.
func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("handled request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
