package aliasclient

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// retryTransport wraps an http.RoundTripper with network-level retries.
//
// Only transport errors are retried. A received response, whatever its
// status, ends the attempt: 404 and 414 carry protocol meaning upstream and
// must reach the resolution logic exactly as the server produced them.
type retryTransport struct {
	base       http.RoundTripper
	cfg        *internalConfig
	classifier RetryClassifier
}

// newRetryTransport wraps base with retry logic, or returns base unchanged
// when retries are disabled.
func newRetryTransport(base http.RoundTripper, cfg *internalConfig) http.RoundTripper {
	if !cfg.RetryConfig.IsEnabled() {
		return base
	}

	classifier := cfg.RetryClassifier
	if classifier == nil {
		classifier = DefaultClassifier
	}

	return &retryTransport{
		base:       base,
		cfg:        cfg,
		classifier: classifier,
	}
}

// RoundTrip implements http.RoundTripper with automatic retries.
func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	rc := t.cfg.RetryConfig

	// Capture the request body so each attempt gets a fresh reader.
	var bodyBytes []byte
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	}

	jitter := rc.JitterFactor
	if jitter <= 0 {
		jitter = 0.5
	}
	b := &backoff.ExponentialBackOff{
		InitialInterval:     rc.InitialInterval,
		RandomizationFactor: jitter,
		Multiplier:          rc.Multiplier,
		MaxInterval:         rc.MaxInterval,
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(rc.MaxRetries + 1),
		backoff.WithNotify(func(error, time.Duration) {
			t.cfg.Metrics.recordRetryAttempt(ctx, t.cfg.baseAttributes())
		}),
	}

	return backoff.Retry(ctx, func() (*http.Response, error) {
		resp, err := t.base.RoundTrip(t.cloneRequest(req, bodyBytes))
		if err == nil {
			return resp, nil
		}
		if t.classifier(err) {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}, opts...)
}

// cloneRequest creates a copy of the request with a fresh body.
func (t *retryTransport) cloneRequest(req *http.Request, bodyBytes []byte) *http.Request {
	clone := req.Clone(req.Context())

	if bodyBytes != nil {
		clone.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		clone.ContentLength = int64(len(bodyBytes))
	} else if req.GetBody != nil {
		var err error
		clone.Body, err = req.GetBody()
		if err != nil {
			clone.Body = req.Body
		}
	}

	return clone
}
