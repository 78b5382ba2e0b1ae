package aliasserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestChain(t *testing.T) {
	t.Run("given ordered middlewares, then first runs outermost", func(t *testing.T) {
		var order []string
		tag := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		handler := Chain(tag("outer"), tag("inner"))(
			http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				order = append(order, "handler")
			}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, []string{"outer", "inner", "handler"}, order)
	})
}

func TestRequestID(t *testing.T) {
	t.Run("given no incoming id, then one is generated", func(t *testing.T) {
		var seen string
		handler := RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = RequestIDFromContext(r.Context())
		}))

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))
	})

	t.Run("given incoming id, then it is forwarded unchanged", func(t *testing.T) {
		var seen string
		handler := RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = RequestIDFromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "upstream-id")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, "upstream-id", seen)
		assert.Equal(t, "upstream-id", rr.Header().Get(RequestIDHeader))
	})
}

func TestRecovery(t *testing.T) {
	t.Run("given panicking handler, then answers 500", func(t *testing.T) {
		handler := Recovery(zerolog.Nop())(
			http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				panic("boom")
			}))

		rr := httptest.NewRecorder()
		assert.NotPanics(t, func() {
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		})

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestRateLimitByIP(t *testing.T) {
	t.Run("given separate client IPs, then buckets are independent", func(t *testing.T) {
		handler := RateLimitByIP(rate.Limit(1), 1)(
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

		send := func(addr string) int {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = addr
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			return rr.Code
		}

		assert.Equal(t, http.StatusOK, send("10.0.0.1:1234"))
		assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:1234"))
		assert.Equal(t, http.StatusOK, send("10.0.0.2:1234"))
	})
}
