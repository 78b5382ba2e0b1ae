package aliasclient

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// metrics holds the metric instruments for alias resolution.
type metrics struct {
	// requestDuration measures single round-trip duration in seconds.
	requestDuration metric.Float64Histogram

	// resolveDuration measures full Resolve duration in seconds,
	// labeled with the branch that produced the final result.
	resolveDuration metric.Float64Histogram

	// aliasCreations counts alias-creation calls, labeled with the reason
	// (length, server_reject, expired) and outcome.
	aliasCreations metric.Int64Counter

	// aliasExpirations counts cached aliases observed expired (404 on use).
	aliasExpirations metric.Int64Counter

	// cacheHits counts resolves served through a cached alias.
	cacheHits metric.Int64Counter

	// retryAttempts counts network-level retry attempts.
	retryAttempts metric.Int64Counter

	// breakerRequests counts requests through the circuit breaker by outcome.
	breakerRequests metric.Int64Counter
}

// newMetrics creates and registers metric instruments.
func newMetrics(meter metric.Meter) (*metrics, error) {
	m := &metrics{}
	var err error

	m.requestDuration, err = meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("Duration of HTTP client requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.resolveDuration, err = meter.Float64Histogram(
		"alias.client.resolve.duration",
		metric.WithDescription("Duration of alias resolutions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.aliasCreations, err = meter.Int64Counter(
		"alias.client.creations",
		metric.WithDescription("Alias-creation calls by reason and outcome"),
	)
	if err != nil {
		return nil, err
	}

	m.aliasExpirations, err = meter.Int64Counter(
		"alias.client.expirations",
		metric.WithDescription("Cached aliases observed expired on use"),
	)
	if err != nil {
		return nil, err
	}

	m.cacheHits, err = meter.Int64Counter(
		"alias.client.cache.hits",
		metric.WithDescription("Resolves served through a cached alias"),
	)
	if err != nil {
		return nil, err
	}

	m.retryAttempts, err = meter.Int64Counter(
		"http.client.retry.attempts",
		metric.WithDescription("Network-level retry attempts"),
	)
	if err != nil {
		return nil, err
	}

	m.breakerRequests, err = meter.Int64Counter(
		"http.client.breaker.requests",
		metric.WithDescription("Requests through the circuit breaker by outcome"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *metrics) recordRequestDuration(
	ctx context.Context,
	d time.Duration,
	attrs []attribute.KeyValue,
) {
	if m == nil {
		return
	}
	m.requestDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
}

func (m *metrics) recordResolveDuration(
	ctx context.Context,
	d time.Duration,
	branch string,
	attrs []attribute.KeyValue,
) {
	if m == nil {
		return
	}
	attrs = append(attrs, attribute.String("alias.resolve.branch", branch))
	m.resolveDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
}

func (m *metrics) recordAliasCreation(
	ctx context.Context,
	reason string,
	ok bool,
	attrs []attribute.KeyValue,
) {
	if m == nil {
		return
	}
	attrs = append(attrs,
		attribute.String("alias.create.reason", reason),
		attribute.Bool("alias.create.success", ok),
	)
	m.aliasCreations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *metrics) recordAliasExpiration(ctx context.Context, attrs []attribute.KeyValue) {
	if m == nil {
		return
	}
	m.aliasExpirations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *metrics) recordCacheHit(ctx context.Context, attrs []attribute.KeyValue) {
	if m == nil {
		return
	}
	m.cacheHits.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *metrics) recordRetryAttempt(ctx context.Context, attrs []attribute.KeyValue) {
	if m == nil {
		return
	}
	m.retryAttempts.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *metrics) recordBreakerRequest(ctx context.Context, name, outcome string) {
	if m == nil {
		return
	}
	m.breakerRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("breaker.name", name),
		attribute.String("breaker.outcome", outcome),
	))
}

// baseAttributes returns common attributes for all spans and metrics.
func (cfg *internalConfig) baseAttributes() []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 1)
	if cfg.ServiceName != "" {
		attrs = append(attrs, attribute.String("http.client.name", cfg.ServiceName))
	}
	return attrs
}
