// Package restclient provides a uniform create/read/update/delete interface
// over a conventional REST backend. Collection endpoints live at
// "{resource}/" and item endpoints at "{resource}/{id}/"; every master-data
// page in the portal is built over the same client instead of duplicating
// request logic.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Client holds the shared HTTP configuration for every resource bound to it.
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    map[string]string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithHeader adds a default header sent with every request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) { c.headers[key] = value }
}

// WithCredentials attaches a cookie jar so the client sends credentials
// (cookies) with every request, as the mobile API root requires. The HTTP
// client is cloned first, so a *http.Client shared with other Clients never
// picks up the jar.
func WithCredentials() ClientOption {
	return func(c *Client) {
		jar, err := cookiejar.New(nil)
		if err != nil {
			// cookiejar.New with nil options cannot fail today; keep the
			// client usable if that ever changes.
			return
		}
		clone := *c.httpClient
		clone.Jar = jar
		c.httpClient = &clone
	}
}

var defaultHTTPClient = &http.Client{Timeout: 15 * time.Second}

// NewClient builds a client for the given API root. JSON content type is the
// default for every request.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: defaultHTTPClient,
		headers:    map[string]string{"Content-Type": "application/json"},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type requestConfig struct {
	query url.Values
}

// RequestOption customizes a single request.
type RequestOption func(*requestConfig)

// WithQuery adds a query parameter to the request.
func WithQuery(key, value string) RequestOption {
	return func(rc *requestConfig) { rc.query.Add(key, value) }
}

// do issues one request and decodes the JSON response into out (when out is
// non-nil). Transport and HTTP errors are returned to the caller unmodified;
// there is no retry and no caching here.
func (c *Client) do(ctx context.Context, method, path string, payload any, out any, opts ...RequestOption) error {
	rc := requestConfig{query: url.Values{}}
	for _, opt := range opts {
		opt(&rc)
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	target := c.baseURL + path
	if len(rc.query) > 0 {
		target += "?" + rc.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response from %s %s: %w", method, path, err)
	}
	return nil
}
