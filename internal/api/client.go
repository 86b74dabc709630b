// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/tidwall/gjson"

	"github.com/staranto/vyctl/internal/version"
)

const DefaultTimeout = 30 * time.Second

// Client talks to a single backend.
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the pooled cleanhttp client, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// New returns a Client for baseURL, e.g. http://localhost:3001.
func New(baseURL string, opts ...Option) *Client {
	hc := cleanhttp.DefaultPooledClient()
	hc.Timeout = DefaultTimeout

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// EscapePath escapes each segment of a slash separated config path. Segments
// keep their separators so "firewall/group/address-group/LAN HOSTS" becomes
// "firewall/group/address-group/LAN%20HOSTS".
func EscapePath(path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return ""
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// endpoint builds the absolute URL for an /api endpoint. query may be nil.
func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + "/api/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do executes the request and returns the body of a successful response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	u := c.endpoint(path, query)

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("User-Agent", "vyctl/"+version.Version)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).WithField("url", u).Debug("request failed")
		return nil, fmt.Errorf("%w: could not connect to API at %s: %w", ErrNetwork, c.baseURL, err)
	}
	defer resp.Body.Close()

	var body bytes.Buffer
	if _, err := body.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	log.WithFields(log.Fields{
		"method":  method,
		"url":     u,
		"status":  resp.StatusCode,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("api")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(resp, body.Bytes(), u)
	}

	if err := checkEnvelope(body.Bytes()); err != nil {
		return nil, err
	}

	return body.Bytes(), nil
}

func newError(resp *http.Response, body []byte, u string) *Error {
	apiErr := &Error{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		URL:        u,
	}

	switch {
	case gjson.ValidBytes(body) && gjson.GetBytes(body, "error").String() != "":
		apiErr.Message = gjson.GetBytes(body, "error").String()
	case gjson.ValidBytes(body) && gjson.GetBytes(body, "detail").String() != "":
		apiErr.Message = gjson.GetBytes(body, "detail").String()
	default:
		apiErr.Message = strings.TrimSpace(string(body))
	}

	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("Server returned %d %s", apiErr.Status, apiErr.StatusText)
	}

	return apiErr
}

// checkEnvelope rejects bodies that carry success=false. Bodies without a
// success field are passed through, since the config tree may arrive bare.
func checkEnvelope(body []byte) error {
	if !gjson.ValidBytes(body) {
		return fmt.Errorf("%w: response is not valid JSON", ErrUnsuccessful)
	}

	success := gjson.GetBytes(body, "success")
	if !success.Exists() || success.Bool() {
		return nil
	}

	msg := gjson.GetBytes(body, "error").String()
	if msg == "" {
		msg = "unknown error"
	}
	return fmt.Errorf("%w: %s", ErrUnsuccessful, msg)
}

// Data returns the envelope's data member, or the whole document when the
// body is not an envelope.
func Data(body []byte) gjson.Result {
	if gjson.GetBytes(body, "success").Exists() {
		return gjson.GetBytes(body, "data")
	}
	return gjson.ParseBytes(body)
}

// drain is used for endpoints whose body is not interesting.
func drain(_ []byte, err error) error {
	return err
}
