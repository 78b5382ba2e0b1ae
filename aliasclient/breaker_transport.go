package aliasclient

import (
	"errors"
	"net/http"

	"github.com/sony/gobreaker/v2"
)

// circuitBreakerTransport wraps requests in a circuit breaker.
//
// The breaker counts transport-level failures only. Any received response,
// including 404 and 414, is a success from the breaker's point of view;
// those statuses are protocol signals for the resolution layer, not
// downstream health information.
type circuitBreakerTransport struct {
	breaker *gobreaker.CircuitBreaker[*http.Response]
	next    http.RoundTripper
	cfg     *internalConfig
	name    string
}

// newCircuitBreakerTransport wraps next with a breaker, or returns next
// unchanged when no breaker is configured.
func newCircuitBreakerTransport(next http.RoundTripper, cfg *internalConfig) http.RoundTripper {
	if cfg.BreakerConfig == nil {
		return next
	}

	name := cfg.ServiceName
	if name == "" {
		name = "alias-client"
	}

	bc := cfg.BreakerConfig
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if bc.ConsecutiveFailures > 0 &&
				counts.ConsecutiveFailures >= bc.ConsecutiveFailures {
				return true
			}
			if bc.FailureRatio > 0 && counts.Requests >= bc.MinRequests &&
				counts.TotalFailures > 0 {
				ratio := float64(counts.TotalFailures) / float64(counts.Requests)
				if ratio >= bc.FailureRatio {
					return true
				}
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if bc.OnStateChange != nil {
				bc.OnStateChange(name, from, to)
			}
		},
	}

	return &circuitBreakerTransport{
		breaker: gobreaker.NewCircuitBreaker[*http.Response](st),
		next:    next,
		cfg:     cfg,
		name:    name,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *circuitBreakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	resp, err := t.breaker.Execute(func() (*http.Response, error) {
		return t.next.RoundTrip(req) //nolint:bodyclose // caller closes
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) ||
			errors.Is(err, gobreaker.ErrTooManyRequests) {
			t.cfg.Metrics.recordBreakerRequest(ctx, t.name, "rejected")
		} else {
			t.cfg.Metrics.recordBreakerRequest(ctx, t.name, "failure")
		}
		return nil, err
	}

	t.cfg.Metrics.recordBreakerRequest(ctx, t.name, "success")
	return resp, nil
}
