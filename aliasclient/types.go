package aliasclient

import (
	"net/http"

	json "github.com/goccy/go-json"
)

// AliasRecord is a server-issued alias for a logical target path.
//
// Path is the short URI to fetch in place of Target. Records are immutable
// once created; a record becomes invalid when the server later answers 404
// for its Path (expiry is detected on use, never predicted).
type AliasRecord struct {
	// ID is the server-assigned alias identifier.
	ID string `json:"id"`

	// Path is the short URI that resolves to the same resource as Target.
	Path string `json:"path"`

	// Href is the absolute URL of the alias as reported by the server.
	Href string `json:"href"`

	// Target is the original, possibly over-long logical path.
	Target string `json:"target"`
}

// Result is the normalized outcome of one resolution.
//
// Status is always populated. Body carries the raw response payload and is
// populated only when the server answered 200; a non-200 response is not
// assumed to carry a payload in the expected shape.
type Result struct {
	// Status is the HTTP status code of the final response.
	Status int

	// Header holds the response headers of the final response.
	Header http.Header

	// Body is the raw response body, present only on status 200.
	Body []byte
}

// IsSuccess reports whether the status code is 2xx.
func (r *Result) IsSuccess() bool {
	return r.Status >= 200 && r.Status < 300
}

// DecodeJSON unmarshals the response body into v.
func (r *Result) DecodeJSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// RequestInit carries per-request overrides for Resolve.
//
// Zero values fall back to a GET request with no body and no extra headers.
// Build a RequestInit through RequestOption values:
//
//	res, err := client.Resolve(ctx, path,
//	    aliasclient.Method(http.MethodPost),
//	    aliasclient.JSONBody(payload),
//	)
type RequestInit struct {
	// Method is the HTTP method. Defaults to GET.
	Method string

	// Header holds extra request headers. The Authorization header is
	// always overridden with the client's credentials.
	Header http.Header

	// Body is the raw request body.
	Body []byte

	// err records a deferred body-encoding failure, surfaced on send.
	err error
}

// RequestOption mutates a RequestInit.
type RequestOption func(*RequestInit)

// Method sets the HTTP method for the request.
func Method(method string) RequestOption {
	return func(init *RequestInit) {
		init.Method = method
	}
}

// Header adds a request header.
func Header(key, value string) RequestOption {
	return func(init *RequestInit) {
		if init.Header == nil {
			init.Header = make(http.Header)
		}
		init.Header.Set(key, value)
	}
}

// Body sets a raw request body.
func Body(body []byte) RequestOption {
	return func(init *RequestInit) {
		init.Body = body
	}
}

// JSONBody encodes v as JSON and sets it as the request body together with
// a Content-Type header. Encoding failures are surfaced when the request
// is sent.
func JSONBody(v any) RequestOption {
	return func(init *RequestInit) {
		data, err := json.Marshal(v)
		if err != nil {
			init.err = err
			return
		}
		init.Body = data
		if init.Header == nil {
			init.Header = make(http.Header)
		}
		init.Header.Set("Content-Type", "application/json")
	}
}

func newRequestInit(opts []RequestOption) *RequestInit {
	init := &RequestInit{}
	for _, opt := range opts {
		opt(init)
	}
	return init
}
