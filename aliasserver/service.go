package aliasserver

import (
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// AliasPathPrefix is the URL prefix under which aliases resolve.
const AliasPathPrefix = "/a/"

// CreateAliasPath is the alias-management endpoint.
const CreateAliasPath = "/api/query/alias"

// Service is the alias-management HTTP service.
//
// Alias fetches are reverse-dispatched: a live alias rewrites the request URL
// to the stored target and hands the request to the upstream handler, so the
// upstream serves /a/{id} exactly as if the client had sent the full URI.
type Service struct {
	store    Store
	upstream http.Handler
	ttl      time.Duration
	baseURL  string
	logger   zerolog.Logger
	metrics  *serviceMetrics
	router   chi.Router
}

// serviceConfig collects ServiceOption state before assembly.
type serviceConfig struct {
	store        Store
	ttl          time.Duration
	baseURL      string
	maxURILength int
	logger       *zerolog.Logger
	registry     *prometheus.Registry
	rateLimit    rate.Limit
	rateBurst    int
	middleware   []Middleware
}

// ServiceOption configures the Service.
type ServiceOption func(*serviceConfig)

// WithStore sets the alias store. Defaults to a fresh MemoryStore.
func WithStore(store Store) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.store = store
	}
}

// WithAliasTTL sets the lifetime of created aliases. Zero (the default)
// means aliases never expire.
func WithAliasTTL(ttl time.Duration) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.ttl = ttl
	}
}

// WithBaseURL sets the absolute base used to build the href of created
// records. Without it, href is the alias path.
func WithBaseURL(baseURL string) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the service logger.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.logger = &logger
	}
}

// WithRegistry sets the Prometheus registry for service metrics and the
// /metrics endpoint. Defaults to a private registry per service.
func WithRegistry(reg *prometheus.Registry) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.registry = reg
	}
}

// WithMaxURILength rejects requests whose request URI is this long or longer
// with 414. Aliased and management URIs stay far below any sane limit, so
// only over-long direct fetches are affected. Zero (the default) disables
// the check.
func WithMaxURILength(n int) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.maxURILength = n
	}
}

// WithRateLimit applies a global token-bucket limit to all routes.
func WithRateLimit(limit rate.Limit, burst int) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.rateLimit = limit
		cfg.rateBurst = burst
	}
}

// WithServiceMiddleware appends extra middleware inside the built-in stack.
func WithServiceMiddleware(mw ...Middleware) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.middleware = append(cfg.middleware, mw...)
	}
}

// NewService creates the alias service. The upstream handler receives every
// successfully resolved alias fetch with the request URL rewritten to the
// stored target.
func NewService(upstream http.Handler, opts ...ServiceOption) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.store == nil {
		cfg.store = NewMemoryStore()
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.logger != nil {
		logger = *cfg.logger
	}

	registry := cfg.registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	s := &Service{
		store:    cfg.store,
		upstream: upstream,
		ttl:      cfg.ttl,
		baseURL:  cfg.baseURL,
		logger:   logger,
		metrics:  newServiceMetrics(registry),
	}

	middlewares := []Middleware{
		RequestID(),
		Recovery(logger),
		AccessLog(logger, "/healthz", "/metrics"),
	}
	if cfg.maxURILength > 0 {
		middlewares = append(middlewares, URILengthLimit(cfg.maxURILength))
	}
	if cfg.rateLimit > 0 {
		middlewares = append(middlewares, RateLimit(cfg.rateLimit, cfg.rateBurst))
	}
	middlewares = append(middlewares, cfg.middleware...)

	chain := Chain(middlewares...)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return chain(next)
	})

	r.Post(CreateAliasPath, s.handleCreate)
	r.Handle(AliasPathPrefix+"{id}", http.HandlerFunc(s.handleAlias))
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Everything else is a direct resource fetch; the service fronts the
	// upstream on the same base URL the aliases live on.
	r.NotFound(s.handleDirect)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// createRequest is the wire shape of the creation endpoint's request body.
type createRequest struct {
	Target string `json:"target"`
}

// handleCreate creates an alias for the posted target and answers 201 with
// the bare record.
func (s *Service) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Target == "" {
		writeError(w, http.StatusBadRequest, "target is required")
		return
	}

	id := uuid.New().String()
	path := AliasPathPrefix + id
	rec := Record{
		ID:     id,
		Path:   path,
		Href:   s.baseURL + path,
		Target: req.Target,
	}

	if err := s.store.Put(r.Context(), rec, s.ttl); err != nil {
		s.logger.Error().Err(err).Str("alias_id", id).Msg("failed to store alias")
		writeError(w, http.StatusInternalServerError, "failed to store alias")
		return
	}

	s.metrics.aliasesCreated.Inc()
	s.logger.Debug().
		Str("alias_id", id).
		Int("target_len", len(req.Target)).
		Msg("alias created")

	writeJSON(w, http.StatusCreated, rec)
}

// handleAlias resolves /a/{id}: a live record rewrites the request to the
// stored target and delegates to the upstream handler; anything else is 404.
func (s *Service) handleAlias(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, ok, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.logger.Error().Err(err).Str("alias_id", id).Msg("alias lookup failed")
		writeError(w, http.StatusInternalServerError, "alias lookup failed")
		return
	}
	if !ok {
		s.metrics.aliasMisses.Inc()
		writeError(w, http.StatusNotFound, "alias not found")
		return
	}

	target, err := url.Parse(rec.Target)
	if err != nil {
		s.logger.Error().Err(err).Str("alias_id", id).Msg("stored target is not a valid URI")
		writeError(w, http.StatusInternalServerError, "invalid alias target")
		return
	}

	s.metrics.aliasHits.Inc()

	req := r.Clone(r.Context())
	req.URL.Path = "/" + strings.TrimPrefix(target.Path, "/")
	req.URL.RawQuery = target.RawQuery
	req.RequestURI = req.URL.RequestURI()

	s.upstream.ServeHTTP(w, req)
}

// handleDirect passes unmatched routes straight to the upstream.
func (s *Service) handleDirect(w http.ResponseWriter, r *http.Request) {
	s.upstream.ServeHTTP(w, r)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
