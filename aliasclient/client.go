package aliasclient

import (
	"net/http"

	"golang.org/x/sync/singleflight"
)

// Client resolves logical resource paths against a configured base endpoint,
// transparently substituting over-long URIs with server-issued aliases.
//
// Create a Client using New():
//
//	client := aliasclient.New(
//	    aliasclient.WithBaseURL("https://api.example.com"),
//	    aliasclient.WithBasicAuth("svc-user", "secret"),
//	)
//
//	res, err := client.Resolve(ctx, longPath)
//
// A Client is safe for concurrent use. It owns an alias cache shared by all
// of its Resolve calls for the lifetime of the process; the cache is never
// persisted.
type Client struct {
	// httpClient is the underlying HTTP client with transport chain.
	httpClient *http.Client

	// config holds all client configuration.
	config *internalConfig

	// cache maps logical target paths to alias records.
	cache AliasCache

	// createGroup serializes alias creation per target path, so concurrent
	// resolves of the same path produce a single server-side alias.
	createGroup singleflight.Group
}

// New creates a Client with production-ready defaults.
//
// The transport chain beneath the alias protocol is assembled as: base
// transport, then optional network-level retry, then optional circuit
// breaker, then OpenTelemetry instrumentation.
func New(opts ...Option) *Client {
	cfg := newConfig(opts...)

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		base := cfg.Transport
		if base == nil {
			base = cfg.buildTransport()
		}

		withRetry := newRetryTransport(base, cfg)
		withBreaker := newCircuitBreakerTransport(withRetry, cfg)
		instrumented := newOtelTransport(withBreaker, cfg)

		httpClient = &http.Client{
			Transport: instrumented,
			Timeout:   cfg.httpConfig.Timeout,
		}
	}

	return &Client{
		httpClient: httpClient,
		config:     cfg,
		cache:      cfg.Cache,
	}
}

// Cache returns the alias cache owned by this client.
func (c *Client) Cache() AliasCache {
	return c.cache
}

// HTTP returns the underlying *http.Client for advanced use cases.
func (c *Client) HTTP() *http.Client {
	return c.httpClient
}

// endpointURI joins the base URL with a resource path.
func (c *Client) endpointURI(path string) string {
	return JoinPath(c.config.BaseURL, path)
}

// report emits a message on the status side channel.
func (c *Client) report(message string) {
	c.config.Report(message)
}
