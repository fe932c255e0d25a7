package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sitegrade/sitegrade-cli/internal/analyzer"
	"github.com/sitegrade/sitegrade-cli/internal/checks"
	sgerrors "github.com/sitegrade/sitegrade-cli/internal/shared/errors"
)

// AnalyzeService runs a full analysis of one URL. *analyzer.Analyzer
// satisfies it; tests substitute a stub.
type AnalyzeService interface {
	Analyze(ctx context.Context, rawURL string) (*analyzer.Report, error)
}

// Config carries everything the server needs. A zero RateLimit disables
// rate limiting and an empty AuthToken disables authentication.
type Config struct {
	Analyzer    AnalyzeService
	Catalog     []checks.CategorySpec
	Version     string
	AuthToken   string
	RateLimit   int // requests per second per client IP
	RateBurst   int
	CORSOrigins []string // allowed origins, empty allows all
	Logger      *zap.Logger
}

// Server is the REST API over the analyzer.
type Server struct {
	cfg      Config
	limiters *rateLimiterMap
	started  time.Time
}

func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Server{
		cfg:      cfg,
		limiters: newRateLimiterMap(),
		started:  time.Now(),
	}
}

// Router builds the handler chain. Order matters: the request ID and real
// client IP must be in place before logging and rate limiting read them.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.withCORS)
	r.Use(s.withLogging)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.withRateLimit)
	r.Use(s.withAuth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/categories", s.handleCategories)
		r.Post("/analyze", s.handleAnalyze)
	})

	return r
}

// Response is the envelope around every API payload.
type Response struct {
	Data  interface{} `json:"data,omitempty"`
	Error *ErrorMsg   `json:"error,omitempty"`
	Meta  *Meta       `json:"meta,omitempty"`
}

// ErrorMsg carries a machine-readable code next to the human message.
type ErrorMsg struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta correlates the response with the server-side request log.
type Meta struct {
	RequestID string `json:"request_id,omitempty"`
}

// AnalyzeRequest is the body of POST /api/v1/analyze.
type AnalyzeRequest struct {
	URL string `json:"url"`
}

type healthPayload struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, r, http.StatusOK, healthPayload{
		Status:  "ok",
		Version: s.cfg.Version,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	catalog := s.cfg.Catalog
	if catalog == nil {
		catalog = checks.Catalog()
	}
	s.writeData(w, r, http.StatusOK, catalog)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Analyzer == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, "analyzer_unavailable", "no analyzer configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid_request", "request body must be JSON with a url field")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		s.writeError(w, r, http.StatusBadRequest, "invalid_url", "url is required")
		return
	}

	report, err := s.cfg.Analyzer.Analyze(r.Context(), req.URL)
	if err != nil {
		switch {
		case errors.Is(err, sgerrors.ErrEmptyTarget),
			errors.Is(err, sgerrors.ErrInvalidTarget),
			errors.Is(err, sgerrors.ErrUnsupportedScheme):
			s.writeError(w, r, http.StatusBadRequest, "invalid_url", err.Error())
		case errors.Is(err, sgerrors.ErrAnalysisTimeout):
			s.writeError(w, r, http.StatusGatewayTimeout, "analysis_timeout", err.Error())
		case errors.Is(err, sgerrors.ErrFetchFailed):
			s.writeError(w, r, http.StatusBadGateway, "fetch_failed", err.Error())
		default:
			s.writeError(w, r, http.StatusInternalServerError, "analysis_failed", err.Error())
		}
		return
	}

	s.writeData(w, r, http.StatusOK, report)
}

// withCORS answers preflights and sets the allow headers. An empty origin
// list allows every origin; otherwise only exact matches are echoed back.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		allowOrigin := "*"
		if len(s.cfg.CORSOrigins) > 0 {
			allowOrigin = ""
			for _, allowed := range s.cfg.CORSOrigins {
				if allowed == origin {
					allowOrigin = origin
					break
				}
			}
		}

		if allowOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.cfg.Logger.Info("http_request",
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.RateLimit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		// RealIP has already folded X-Forwarded-For into RemoteAddr.
		clientIP := r.RemoteAddr
		if host, _, err := net.SplitHostPort(clientIP); err == nil {
			clientIP = host
		}

		burst := s.cfg.RateBurst
		if burst <= 0 {
			burst = s.cfg.RateLimit
		}

		if !s.limiters.get(clientIP, s.cfg.RateLimit, burst).Allow() {
			s.cfg.Logger.Warn("rate_limit_exceeded",
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
				zap.String("client_ip", clientIP),
			)
			s.writeError(w, r, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	if s.cfg.AuthToken == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AuthToken)) != 1 {
			s.writeError(w, r, http.StatusUnauthorized, "unauthorized", "missing or invalid bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeData(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	writeJSON(w, status, Response{
		Data: data,
		Meta: &Meta{RequestID: chimiddleware.GetReqID(r.Context())},
	})
}

// writeError logs every 5xx with the request ID. Plain 500 messages are
// masked from clients; gateway statuses describe the target, not the server.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	if status >= 500 {
		s.cfg.Logger.Error("request_failed",
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			zap.Int("status", status),
			zap.String("code", code),
			zap.String("message", message),
		)
		if status == http.StatusInternalServerError {
			message = "internal server error"
		}
	}
	writeJSON(w, status, Response{
		Error: &ErrorMsg{Code: code, Message: message},
		Meta:  &Meta{RequestID: chimiddleware.GetReqID(r.Context())},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
