package aliasclient

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"sync"

	json "github.com/goccy/go-json"
)

// MockTransport is a configurable http.RoundTripper for testing the alias
// protocol without a network. Stubs are matched in order, first match wins.
type MockTransport struct {
	mu          sync.RWMutex
	stubs       []stub
	defaultResp *http.Response
	defaultErr  error
	requests    []*http.Request
}

type stub struct {
	matcher  func(*http.Request) bool
	response *http.Response
	err      error
	once     bool
	used     bool
}

// NewMockTransport creates a new MockTransport.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// StubResponse stubs all unmatched requests to return the given response.
func (m *MockTransport) StubResponse(statusCode int, body string) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultResp = newStubResponse(statusCode, []byte(body), "")
	return m
}

// StubError stubs all unmatched requests to return the given error.
func (m *MockTransport) StubError(err error) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultErr = err
	return m
}

// StubPath stubs requests whose URL path matches path.
func (m *MockTransport) StubPath(path string, statusCode int, body string) *MockTransport {
	return m.StubFunc(func(req *http.Request) bool {
		return req.URL.Path == path
	}, statusCode, body)
}

// StubPathOnce is StubPath for a single use; later requests fall through to
// the next matching stub. Useful for expiry scenarios where the same alias
// path first answers 404 and then 200.
func (m *MockTransport) StubPathOnce(path string, statusCode int, body string) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stubs = append(m.stubs, stub{
		matcher:  func(req *http.Request) bool { return req.URL.Path == path },
		response: newStubResponse(statusCode, []byte(body), ""),
		once:     true,
	})
	return m
}

// StubFunc stubs requests matching the predicate.
func (m *MockTransport) StubFunc(
	matcher func(*http.Request) bool,
	statusCode int,
	body string,
) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stubs = append(m.stubs, stub{
		matcher:  matcher,
		response: newStubResponse(statusCode, []byte(body), ""),
	})
	return m
}

// StubFuncError stubs requests matching the predicate to fail.
func (m *MockTransport) StubFuncError(matcher func(*http.Request) bool, err error) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stubs = append(m.stubs, stub{matcher: matcher, err: err})
	return m
}

// StubAliasCreate stubs the alias-management endpoint to issue the given
// record with status 201.
func (m *MockTransport) StubAliasCreate(endpointPath string, rec AliasRecord) *MockTransport {
	data, _ := json.Marshal(rec)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stubs = append(m.stubs, stub{
		matcher: func(req *http.Request) bool {
			return req.Method == http.MethodPost && req.URL.Path == endpointPath
		},
		response: newStubResponse(http.StatusCreated, data, "application/json"),
	})
	return m
}

// RoundTrip implements http.RoundTripper.
func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	for i := range m.stubs {
		s := &m.stubs[i]
		if s.used || !s.matcher(req) {
			continue
		}
		if s.once {
			s.used = true
		}
		if s.err != nil {
			return nil, s.err
		}
		return cloneResponse(s.response), nil
	}

	if m.defaultErr != nil {
		return nil, m.defaultErr
	}
	if m.defaultResp != nil {
		return cloneResponse(m.defaultResp), nil
	}

	return nil, errors.New("no stub found for request: " + req.Method + " " + req.URL.String())
}

// Requests returns all requests made through this transport.
func (m *MockTransport) Requests() []*http.Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*http.Request{}, m.requests...)
}

// RequestCount returns the number of requests made.
func (m *MockTransport) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// CountPath returns how many requests hit the given URL path.
func (m *MockTransport) CountPath(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, req := range m.requests {
		if req.URL.Path == path {
			n++
		}
	}
	return n
}

// LastRequest returns the most recent request, or nil if none.
func (m *MockTransport) LastRequest() *http.Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

func newStubResponse(statusCode int, body []byte, contentType string) *http.Response {
	header := make(http.Header)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return &http.Response{
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
		Body:       io.NopCloser(bytes.NewReader(body)),
		Header:     header,
	}
}

func cloneResponse(resp *http.Response) *http.Response {
	var bodyBytes []byte
	if resp.Body != nil {
		bodyBytes, _ = io.ReadAll(resp.Body)
		resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	}

	return &http.Response{
		Status:     resp.Status,
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       io.NopCloser(bytes.NewReader(bodyBytes)),
	}
}
