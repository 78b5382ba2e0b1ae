package aliasclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

// send issues exactly one authenticated request for path against the base
// endpoint and normalizes the outcome. The body is captured only when the
// server answered 200; no retries happen at this layer.
func (c *Client) send(ctx context.Context, path string, init *RequestInit) (*Result, error) {
	if init == nil {
		init = &RequestInit{}
	}
	if init.err != nil {
		return nil, init.err
	}

	method := init.Method
	if method == "" {
		method = http.MethodGet
	}

	return c.do(ctx, method, c.endpointURI(path), init.Header, init.Body,
		func(status int) bool { return status == http.StatusOK })
}

// createAlias asks the alias-management endpoint to issue an alias for
// target. The response body is captured on any 2xx so the caller can decode
// the alias record.
func (c *Client) createAlias(ctx context.Context, target string) (*Result, error) {
	payload, err := json.Marshal(struct {
		Target string `json:"target"`
	}{Target: target})
	if err != nil {
		return nil, err
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "*/*")

	return c.do(ctx, http.MethodPost, c.endpointURI(c.config.AliasEndpoint),
		header, payload,
		func(status int) bool { return status >= 200 && status < 300 })
}

// do performs one round trip and normalizes the response. keepBody decides
// for which statuses the body is read into the Result; other bodies are
// drained so the connection can be reused.
func (c *Client) do(
	ctx context.Context,
	method, uri string,
	header http.Header,
	body []byte,
	keepBody func(status int) bool,
) (*Result, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, uri, reader)
	if err != nil {
		return nil, err
	}

	for k, v := range header {
		req.Header[k] = v
	}

	// Credentials always win over caller-supplied Authorization headers.
	req.SetBasicAuth(c.config.Username, c.config.Password)

	if c.config.Debug {
		logRequest(debugLogger, req)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if c.config.Debug {
		logResponse(debugLogger, resp, time.Since(start))
	}

	result := &Result{
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
	}

	if keepBody(resp.StatusCode) {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		result.Body = data
	} else {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // best-effort drain
	}

	return result, nil
}
