package aliasclient

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingTransport struct {
	err   error
	calls int
}

func (f *failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(bytes.NewBufferString("")),
		Header:     make(http.Header),
	}, nil
}

func TestCircuitBreakerTransport(t *testing.T) {
	t.Run("given no breaker config, then next transport is returned", func(t *testing.T) {
		next := &failingTransport{}
		cfg := newConfig()

		rt := newCircuitBreakerTransport(next, cfg)

		assert.Same(t, http.RoundTripper(next), rt)
	})

	t.Run("given consecutive failures, then breaker opens and rejects", func(t *testing.T) {
		next := &failingTransport{err: errors.New("connection refused")}
		cfg := newConfig(WithBreakerConfig(&BreakerConfig{
			MaxRequests:         1,
			Timeout:             time.Minute,
			ConsecutiveFailures: 3,
		}))
		rt := newCircuitBreakerTransport(next, cfg)

		req, _ := http.NewRequest(http.MethodGet, "http://example.com/x", nil)
		for i := 0; i < 3; i++ {
			_, err := rt.RoundTrip(req)
			require.Error(t, err)
		}

		_, err := rt.RoundTrip(req)
		require.ErrorIs(t, err, gobreaker.ErrOpenState)
		assert.Equal(t, 3, next.calls, "open breaker short-circuits the transport")
	})

	t.Run("given error status responses, then breaker stays closed", func(t *testing.T) {
		next := &failingTransport{}
		cfg := newConfig(WithBreakerConfig(&BreakerConfig{
			MaxRequests:         1,
			Timeout:             time.Minute,
			ConsecutiveFailures: 2,
		}))
		rt := newCircuitBreakerTransport(next, cfg)

		req, _ := http.NewRequest(http.MethodGet, "http://example.com/x", nil)
		for i := 0; i < 5; i++ {
			resp, err := rt.RoundTrip(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		}
		assert.Equal(t, 5, next.calls)
	})

	t.Run("given state change callback, then transitions are observed", func(t *testing.T) {
		var transitions []gobreaker.State
		next := &failingTransport{err: errors.New("connection refused")}
		cfg := newConfig(WithBreakerConfig(&BreakerConfig{
			MaxRequests:         1,
			Timeout:             time.Minute,
			ConsecutiveFailures: 2,
			OnStateChange: func(_ string, _, to gobreaker.State) {
				transitions = append(transitions, to)
			},
		}))
		rt := newCircuitBreakerTransport(next, cfg)

		req, _ := http.NewRequest(http.MethodGet, "http://example.com/x", nil)
		for i := 0; i < 2; i++ {
			rt.RoundTrip(req) //nolint:errcheck
		}

		require.Len(t, transitions, 1)
		assert.Equal(t, gobreaker.StateOpen, transitions[0])
	})

	t.Run("given failure ratio rule, then breaker opens past threshold", func(t *testing.T) {
		next := &failingTransport{err: errors.New("connection refused")}
		cfg := newConfig(WithBreakerConfig(&BreakerConfig{
			MaxRequests:  1,
			Timeout:      time.Minute,
			FailureRatio: 0.5,
			MinRequests:  4,
		}))
		rt := newCircuitBreakerTransport(next, cfg)

		req, _ := http.NewRequest(http.MethodGet, "http://example.com/x", nil)
		for i := 0; i < 4; i++ {
			_, err := rt.RoundTrip(req)
			require.Error(t, err)
		}

		_, err := rt.RoundTrip(req)
		require.ErrorIs(t, err, gobreaker.ErrOpenState)
		assert.Equal(t, 4, next.calls)
	})
}
