package aliasclient

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyTransport fails the first failures calls with err, then succeeds.
type flakyTransport struct {
	failures int
	err      error
	status   int
	calls    int
}

func (f *flakyTransport) RoundTrip(*http.Request) (*http.Response, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(bytes.NewBufferString("ok")),
		Header:     make(http.Header),
	}, nil
}

func fastRetryConfig(maxRetries uint) RetryConfig {
	return RetryConfig{
		MaxRetries:      maxRetries,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	}
}

func TestRetryTransport(t *testing.T) {
	t.Run("given retries disabled, then base transport is returned", func(t *testing.T) {
		base := &flakyTransport{status: http.StatusOK}
		cfg := newConfig()

		rt := newRetryTransport(base, cfg)

		assert.Same(t, http.RoundTripper(base), rt)
	})

	t.Run("given transient failure then success, then request succeeds", func(t *testing.T) {
		base := &flakyTransport{failures: 2, err: syscall.ECONNRESET, status: http.StatusOK}
		cfg := newConfig(WithRetryConfig(fastRetryConfig(3)))
		rt := newRetryTransport(base, cfg)

		req, _ := http.NewRequest(http.MethodGet, "http://example.com/x", nil)
		resp, err := rt.RoundTrip(req)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 3, base.calls)
	})

	t.Run("given retries exhausted, then last error is returned", func(t *testing.T) {
		base := &flakyTransport{failures: 10, err: syscall.ECONNRESET}
		cfg := newConfig(WithRetryConfig(fastRetryConfig(2)))
		rt := newRetryTransport(base, cfg)

		req, _ := http.NewRequest(http.MethodGet, "http://example.com/x", nil)
		_, err := rt.RoundTrip(req)

		require.Error(t, err)
		assert.Equal(t, 3, base.calls, "initial attempt plus two retries")
	})

	t.Run("given non-retryable error, then no retry happens", func(t *testing.T) {
		base := &flakyTransport{failures: 10, err: errors.New("x509: certificate has expired")}
		cfg := newConfig(WithRetryConfig(fastRetryConfig(3)))
		rt := newRetryTransport(base, cfg)

		req, _ := http.NewRequest(http.MethodGet, "http://example.com/x", nil)
		_, err := rt.RoundTrip(req)

		require.Error(t, err)
		assert.Equal(t, 1, base.calls)
	})

	t.Run("given error status response, then never retried", func(t *testing.T) {
		base := &flakyTransport{status: http.StatusServiceUnavailable}
		cfg := newConfig(WithRetryConfig(fastRetryConfig(3)))
		rt := newRetryTransport(base, cfg)

		req, _ := http.NewRequest(http.MethodGet, "http://example.com/x", nil)
		resp, err := rt.RoundTrip(req)

		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, 1, base.calls, "status-code policy belongs to the resolver")
	})

	t.Run("given request body, then each attempt gets a fresh copy", func(t *testing.T) {
		var bodies []string
		base := &recordingTransport{
			respond: func(req *http.Request, call int) (*http.Response, error) {
				data, _ := io.ReadAll(req.Body)
				bodies = append(bodies, string(data))
				if call < 2 {
					return nil, syscall.ECONNRESET
				}
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString("ok")),
					Header:     make(http.Header),
				}, nil
			},
		}
		cfg := newConfig(WithRetryConfig(fastRetryConfig(3)))
		rt := newRetryTransport(base, cfg)

		req, _ := http.NewRequest(http.MethodPost, "http://example.com/x",
			bytes.NewBufferString(`{"target":"t"}`))
		_, err := rt.RoundTrip(req)

		require.NoError(t, err)
		assert.Equal(t, []string{`{"target":"t"}`, `{"target":"t"}`}, bodies)
	})
}

// recordingTransport delegates to respond with a 1-indexed call counter.
type recordingTransport struct {
	calls   int
	respond func(req *http.Request, call int) (*http.Response, error)
}

func (r *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r.calls++
	return r.respond(req, r.calls)
}

func TestDefaultClassifier(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"connection reset", syscall.ECONNRESET, true},
		{"connection refused", syscall.ECONNREFUSED, true},
		{"broken pipe", syscall.EPIPE, true},
		{"eof", io.EOF, true},
		{"certificate error", errors.New("x509: certificate signed by unknown authority"), false},
		{"permission denied", syscall.EACCES, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultClassifier(tt.err))
		})
	}
}
