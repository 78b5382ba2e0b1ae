package aliasclient

import (
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// scope is the instrumentation scope name for OpenTelemetry.
	scope = "github.com/kroma-labs/shortpath-go/aliasclient"

	// DefaultMaxURILength is the joined-URI length at or above which a path
	// is never fetched directly and an alias is created first.
	DefaultMaxURILength = 2000

	// DefaultAliasEndpoint is the alias-management path on the base URL.
	DefaultAliasEndpoint = "api/query/alias"
)

// StatusReporter receives human-readable progress messages during Resolve.
//
// Reporting is a side channel: messages describe which branch the resolution
// took ("attempting direct fetch", "using found alias a1", ...) and are never
// required for correctness.
type StatusReporter func(message string)

// Config holds the HTTP transport configuration for the client's underlying
// connection handling. Use DefaultConfig() as a starting point and adjust
// fields as needed.
type Config struct {
	// Timeout limits the entire request lifecycle, including connection
	// establishment, TLS handshake, and reading the response body.
	// Zero means no timeout.
	//
	// Default: 15s
	Timeout time.Duration

	// MaxIdleConns caps idle keep-alive connections across all hosts.
	//
	// Default: 100
	MaxIdleConns int

	// MaxIdleConnsPerHost caps idle connections per host. The client talks
	// to a single base endpoint, so this is the setting that matters.
	//
	// Default: 20
	MaxIdleConnsPerHost int

	// MaxConnsPerHost limits total connections (idle + active) per host.
	// Zero means unlimited.
	//
	// Default: 100
	MaxConnsPerHost int

	// IdleConnTimeout is how long an idle connection stays pooled.
	//
	// Default: 90s
	IdleConnTimeout time.Duration

	// TLSHandshakeTimeout bounds the TLS handshake.
	//
	// Default: 10s
	TLSHandshakeTimeout time.Duration

	// DialTimeout bounds TCP connection establishment.
	//
	// Default: 5s
	DialTimeout time.Duration

	// KeepAlive is the TCP keep-alive probe interval.
	//
	// Default: 30s
	KeepAlive time.Duration
}

// DefaultConfig returns a balanced transport configuration suitable for most
// deployments.
func DefaultConfig() Config {
	return Config{
		Timeout:             15 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		MaxConnsPerHost:     100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialTimeout:         5 * time.Second,
		KeepAlive:           30 * time.Second,
	}
}

// RetryConfig controls network-level retries in the transport chain beneath
// the alias protocol. Retries apply only to transient network failures; HTTP
// statuses are never retried here because the resolution protocol owns all
// status-code policy. Disabled when MaxRetries is zero.
type RetryConfig struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries uint

	// InitialInterval is the first backoff interval.
	InitialInterval time.Duration

	// MaxInterval caps the backoff interval.
	MaxInterval time.Duration

	// Multiplier is the exponential growth factor.
	Multiplier float64

	// JitterFactor randomizes intervals (0.0-1.0) to avoid retry storms.
	JitterFactor float64
}

// IsEnabled reports whether retries are active.
func (c RetryConfig) IsEnabled() bool {
	return c.MaxRetries > 0
}

// DefaultRetryConfig returns a conservative network-retry configuration:
// 2 retries, 250ms initial interval, doubling, ±50% jitter.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      2,
		InitialInterval: 250 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.5,
	}
}

// BreakerConfig enables a circuit breaker on the transport chain.
//
// The breaker trips on transport-level failures only, so alias-protocol
// statuses (404, 414) flow through it untouched.
type BreakerConfig struct {
	// MaxRequests is the number of probe requests allowed while half-open.
	MaxRequests uint32

	// Interval is the cyclic period for clearing counts while closed.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration

	// ConsecutiveFailures trips the breaker when reached. Zero disables
	// the consecutive-failure rule.
	ConsecutiveFailures uint32

	// FailureRatio trips the breaker when the failure ratio over Interval
	// reaches this value. Zero disables the ratio rule.
	FailureRatio float64

	// MinRequests is the minimum observed requests before FailureRatio
	// is evaluated.
	MinRequests uint32

	// OnStateChange is invoked on breaker state transitions.
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultBreakerConfig trips after 5 consecutive transport failures and
// probes again after 30 seconds.
func DefaultBreakerConfig() *BreakerConfig {
	return &BreakerConfig{
		MaxRequests:         1,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// internalConfig holds the assembled client configuration.
type internalConfig struct {
	httpConfig Config

	// BaseURL is the configured base endpoint all paths resolve against.
	BaseURL string

	// Username and Password feed the Basic Authorization header that is
	// injected on every request.
	Username string
	Password string

	// AliasEndpoint is the alias-management path on the base URL.
	AliasEndpoint string

	// MaxURILength is the client-side length threshold.
	MaxURILength int

	// Cache is the alias cache owned by this client.
	Cache AliasCache

	// Report is the status side channel. Never nil after newConfig.
	Report StatusReporter

	// Transport, when set, replaces the transport built from httpConfig.
	Transport http.RoundTripper

	// HTTPClient, when set, is used verbatim and no transport chain is
	// assembled around it.
	HTTPClient *http.Client

	RetryConfig     RetryConfig
	RetryClassifier RetryClassifier
	BreakerConfig   *BreakerConfig

	// Debug enables zerolog request/response logging.
	Debug bool

	// ServiceName identifies this client in spans and metrics.
	ServiceName string

	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Metrics        *metrics
}

// newConfig applies options over defaults and initializes telemetry.
func newConfig(opts ...Option) *internalConfig {
	cfg := &internalConfig{
		httpConfig:     DefaultConfig(),
		AliasEndpoint:  DefaultAliasEndpoint,
		MaxURILength:   DefaultMaxURILength,
		Report:         func(string) {},
		TracerProvider: otel.GetTracerProvider(),
		MeterProvider:  otel.GetMeterProvider(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Cache == nil {
		cfg.Cache = NewMemoryCache()
	}

	cfg.Tracer = cfg.TracerProvider.Tracer(scope)
	cfg.Meter = cfg.MeterProvider.Meter(scope)
	cfg.Metrics, _ = newMetrics(cfg.Meter)

	return cfg
}

// buildTransport creates an http.Transport from the configuration.
func (cfg *internalConfig) buildTransport() *http.Transport {
	hc := cfg.httpConfig

	dialer := &net.Dialer{
		Timeout:   hc.DialTimeout,
		KeepAlive: hc.KeepAlive,
	}

	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxIdleConns:        hc.MaxIdleConns,
		MaxIdleConnsPerHost: hc.MaxIdleConnsPerHost,
		MaxConnsPerHost:     hc.MaxConnsPerHost,
		IdleConnTimeout:     hc.IdleConnTimeout,
		TLSHandshakeTimeout: hc.TLSHandshakeTimeout,
	}
}

// Option configures the client.
type Option func(*internalConfig)

// WithConfig sets the HTTP transport configuration.
func WithConfig(c Config) Option {
	return func(cfg *internalConfig) {
		cfg.httpConfig = c
	}
}

// WithBaseURL sets the base endpoint all paths are resolved against.
func WithBaseURL(baseURL string) Option {
	return func(cfg *internalConfig) {
		cfg.BaseURL = baseURL
	}
}

// WithBasicAuth sets the credentials for the Basic Authorization header.
// The header is injected on every request and always wins over any
// caller-supplied Authorization header.
func WithBasicAuth(username, password string) Option {
	return func(cfg *internalConfig) {
		cfg.Username = username
		cfg.Password = password
	}
}

// WithAliasEndpoint overrides the alias-management path on the base URL.
//
// Default: "api/query/alias"
func WithAliasEndpoint(path string) Option {
	return func(cfg *internalConfig) {
		cfg.AliasEndpoint = path
	}
}

// WithMaxURILength overrides the client-side URI length threshold at or
// above which an alias is created before any direct fetch.
//
// Default: 2000
func WithMaxURILength(n int) Option {
	return func(cfg *internalConfig) {
		cfg.MaxURILength = n
	}
}

// WithAliasCache injects the alias cache. Use this to share a cache between
// clients or to substitute a fake in tests. Defaults to a fresh MemoryCache
// per client.
func WithAliasCache(cache AliasCache) Option {
	return func(cfg *internalConfig) {
		cfg.Cache = cache
	}
}

// WithStatusReporter sets the progress side channel.
//
// Example:
//
//	client := aliasclient.New(
//	    aliasclient.WithBaseURL(base),
//	    aliasclient.WithStatusReporter(aliasclient.ZerologReporter(logger)),
//	)
func WithStatusReporter(report StatusReporter) Option {
	return func(cfg *internalConfig) {
		if report != nil {
			cfg.Report = report
		}
	}
}

// WithTransport replaces the transport built from Config as the base of the
// transport chain. Retry, breaker, and instrumentation wrappers still apply.
func WithTransport(rt http.RoundTripper) Option {
	return func(cfg *internalConfig) {
		cfg.Transport = rt
	}
}

// WithHTTPClient uses the given http.Client verbatim. No transport chain is
// assembled; the caller owns timeouts and instrumentation.
func WithHTTPClient(hc *http.Client) Option {
	return func(cfg *internalConfig) {
		cfg.HTTPClient = hc
	}
}

// WithRetryConfig enables network-level retries beneath the alias protocol.
func WithRetryConfig(rc RetryConfig) Option {
	return func(cfg *internalConfig) {
		cfg.RetryConfig = rc
	}
}

// WithRetryClassifier overrides the retry decision for network failures.
// The classifier never sees HTTP statuses; status-code policy belongs to
// the resolution protocol.
func WithRetryClassifier(classifier RetryClassifier) Option {
	return func(cfg *internalConfig) {
		cfg.RetryClassifier = classifier
	}
}

// WithBreakerConfig enables a circuit breaker on the transport chain.
func WithBreakerConfig(bc *BreakerConfig) Option {
	return func(cfg *internalConfig) {
		cfg.BreakerConfig = bc
	}
}

// WithDebug enables request/response logging with zerolog.
func WithDebug(debug bool) Option {
	return func(cfg *internalConfig) {
		cfg.Debug = debug
	}
}

// WithServiceName identifies this client in spans and metrics.
func WithServiceName(name string) Option {
	return func(cfg *internalConfig) {
		cfg.ServiceName = name
	}
}

// WithTracerProvider sets a custom OpenTelemetry TracerProvider.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *internalConfig) {
		cfg.TracerProvider = tp
	}
}

// WithMeterProvider sets a custom OpenTelemetry MeterProvider.
// Defaults to the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(cfg *internalConfig) {
		cfg.MeterProvider = mp
	}
}
