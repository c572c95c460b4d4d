package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appanalysis "github.com/bryanwahyu/string-analyzer/internal/application/analysis"
	domain "github.com/bryanwahyu/string-analyzer/internal/domain/analysis"
	"github.com/bryanwahyu/string-analyzer/internal/logger"
	"github.com/bryanwahyu/string-analyzer/internal/middleware"
)

// Options configures the cross-cutting middleware. Zero values disable the
// corresponding feature.
type Options struct {
	Log            *zap.Logger
	Metrics        *middleware.Metrics
	HealthCheckers map[string]middleware.HealthChecker
	CORSOrigins    []string
	APIKeys        map[string]string
	RateLimiter    *middleware.RateLimiter
}

type Router struct {
	svc *appanalysis.Service
	log *zap.Logger
}

func NewRouter(svc *appanalysis.Service, opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	r := &Router{svc: svc, log: log}
	mux := chi.NewRouter()

	mux.Use(middleware.Logging(log))
	if opts.Metrics != nil {
		mux.Use(opts.Metrics.Middleware)
	}
	if len(opts.CORSOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders: []string{middleware.RequestIDHeader},
			MaxAge:         300,
		}))
	}
	mux.Use(middleware.APIKeyAuth(opts.APIKeys))
	if opts.RateLimiter != nil {
		mux.Use(middleware.RateLimit(opts.RateLimiter))
	}

	health := middleware.HealthHandler(opts.HealthCheckers)
	mux.Get("/health", health)
	mux.Get("/healthz", health)
	mux.Get("/readyz", health)
	mux.Get("/livez", middleware.LivenessHandler)
	if opts.Metrics != nil {
		mux.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	mux.Route("/strings", func(rt chi.Router) {
		rt.Post("/", r.wrap(r.handleCreate))
		rt.Get("/", r.wrap(r.handleList))
		rt.Get("/filter-by-natural-language", r.wrap(r.handleNaturalLanguage))
		rt.Post("/export", r.wrap(r.handleExport))
		rt.Get("/{value}", r.wrap(r.handleGet))
		rt.Delete("/{value}", r.wrap(r.handleDelete))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// statusFor maps domain errors ke HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrMissingInput),
		errors.Is(err, domain.ErrMissingQuery):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnparseable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrExportDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			r.log.Error("request failed",
				zap.String(logger.FieldRequestID, middleware.RequestIDFromContext(req.Context())),
				zap.NamedError(logger.FieldError, err),
			)
			http.Error(w, "internal server error", status)
			return
		}
		msg := err.Error()
		if hint := errors.FlattenHints(err); hint != "" {
			msg += "\n" + hint
		}
		http.Error(w, msg, status)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// POST /strings
// Body: {"value": "<text>"}
func (r *Router) handleCreate(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return errors.Wrap(domain.ErrInvalidInput, "request body must be a JSON object")
	}
	if len(body.Value) == 0 || string(body.Value) == "null" {
		return errors.Wrap(domain.ErrMissingInput, `missing "value" field`)
	}
	var value string
	if err := json.Unmarshal(body.Value, &value); err != nil {
		return errors.Wrap(domain.ErrInvalidInput, `"value" must be a string`)
	}

	rec, err := r.svc.Create(req.Context(), value)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, rec)
}

// GET /strings?is_palindrome=&min_length=&max_length=&word_count=&contains_character=
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	f, err := parseFilters(req.URL.Query())
	if err != nil {
		return err
	}
	res, err := r.svc.List(req.Context(), f)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// GET /strings/filter-by-natural-language?query=
func (r *Router) handleNaturalLanguage(w http.ResponseWriter, req *http.Request) error {
	res, err := r.svc.FilterByNaturalLanguage(req.Context(), req.URL.Query().Get("query"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// GET /strings/{value}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	value, err := pathValue(req)
	if err != nil {
		return err
	}
	rec, err := r.svc.Get(req.Context(), value)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, rec)
}

// DELETE /strings/{value}
func (r *Router) handleDelete(w http.ResponseWriter, req *http.Request) error {
	value, err := pathValue(req)
	if err != nil {
		return err
	}
	deleted, err := r.svc.Delete(req.Context(), value)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, deleted)
}

// POST /strings/export
func (r *Router) handleExport(w http.ResponseWriter, req *http.Request) error {
	res, err := r.svc.Export(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}
