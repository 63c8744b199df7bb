package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/agenda/internal/domain"
	logpkg "github.com/kailas-cloud/agenda/internal/logger"
	healthuc "github.com/kailas-cloud/agenda/internal/usecase/health"
)

// ErrorCode is the machine-readable code of an error response.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest     ErrorCode = "bad_request"
	CodeInvalid        ErrorCode = "invalid_argument"
	CodeNotFound       ErrorCode = "not_found"
	CodeCursorNotFound ErrorCode = "cursor_not_found"
	CodeForbidden      ErrorCode = "forbidden"
	CodeAlreadyExists  ErrorCode = "already_exists"
	CodeUnauthorized   ErrorCode = "unauthorized"
	CodeRateLimited    ErrorCode = "rate_limited"
	CodeNotImplemented ErrorCode = "not_implemented"
	CodeInternal       ErrorCode = "internal_error"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the agenda HTTP API.
type Server struct {
	search        Searcher
	contacts      Contacts
	categories    Categories
	health        HealthChecker
	validate      *requestValidator
	maxUpload     int64
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search Searcher,
	contacts Contacts,
	categories Categories,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search:     search,
		contacts:   contacts,
		categories: categories,
		health:     health,
		validate:   newRequestValidator(),
		maxUpload:  5 << 20,
		logger:     logger,
	}
	// Order matters: CursorNotFound also matches ErrNotFound.
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, CodeInvalid),
		sentinelHandler(domain.ErrCursorNotFound, http.StatusNotFound, CodeCursorNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrForbidden, http.StatusForbidden, CodeForbidden),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, CodeAlreadyExists),
		sentinelHandler(domain.ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
		sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented, CodeNotImplemented),
	}
	return s
}

// WithMaxUpload sets the photo upload size limit in bytes.
func (s *Server) WithMaxUpload(n int64) *Server {
	if n > 0 {
		s.maxUpload = n
	}
	return s
}

// RouterConfig holds the middleware dependencies of the router.
type RouterConfig struct {
	Auth          *TokenVerifier
	MetricsKeys   []string
	PublicLimiter Limiter
	Middlewares   []func(http.Handler) http.Handler
}

// Router mounts every route on a chi router.
// Middlewares run in order before routing; public routes pass through
// PublicLimiter when set, owner routes require a valid token.
func (s *Server) Router(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(wideEventMiddleware(s.logger))
	for _, mw := range cfg.Middlewares {
		r.Use(mw)
	}
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.With(BearerAuthMiddleware(cfg.MetricsKeys)).Get("/metrics", s.Metrics)

	r.Route("/public/contacts", func(r chi.Router) {
		if cfg.PublicLimiter != nil {
			r.Use(RateLimitMiddleware(cfg.PublicLimiter, s.logger))
		}
		r.Get("/", s.SearchPublicContacts)
		r.Get("/nearby", s.NearbyContacts)
		r.Get("/{slug}", s.GetPublicContact)
	})

	r.Group(func(r chi.Router) {
		r.Use(JWTAuthMiddleware(cfg.Auth))

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", s.ListContacts)
			r.Post("/", s.CreateContact)
			r.Get("/proximity", s.ContactProximity)
			r.Get("/{id}", s.GetContact)
			r.Patch("/{id}", s.UpdateContact)
			r.Delete("/{id}", s.DeleteContact)
			r.Put("/{id}/photo", s.UploadContactPhoto)
			r.Delete("/{id}/photo", s.RemoveContactPhoto)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.ListCategories)
			r.Post("/", s.CreateCategory)
			r.Patch("/{id}", s.UpdateCategory)
			r.Delete("/{id}", s.DeleteCategory)
		})
	})

	return r
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns an error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	var invalid *domain.InvalidArgumentError
	if errors.As(err, &invalid) {
		return invalid.Error()
	}
	var cursor *domain.CursorNotFoundError
	if errors.As(err, &cursor) {
		return cursor.Error()
	}
	sentinels := []error{
		domain.ErrInvalidArgument,
		domain.ErrNotFound,
		domain.ErrForbidden,
		domain.ErrAlreadyExists,
		domain.ErrUnauthorized,
		domain.ErrRateLimited,
		domain.ErrNotImplemented,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Debug("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
}
