// Copyright (c) 2024 The ocr4all-ajax Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package client drives the OCR4all web application through its internal
// AJAX endpoints. OCR4all does not provide a REST API, but most operations
// the web UI performs can be invoked directly; this package mimics the
// browser's AJAX traffic, including its session cookie handling.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/publicsuffix"

	"github.com/uniwuezpd/ocr4all-ajax/pkg/log"
)

const (
	// DefaultHTTPTimeout bounds every plain AJAX call.
	DefaultHTTPTimeout = 30 * time.Second
	// DefaultExecTimeout bounds a single processFlow/execute POST.
	DefaultExecTimeout = 60 * time.Second
	// DefaultWaitTimeout bounds WaitForCompletion.
	DefaultWaitTimeout = time.Hour
	// DefaultConvertTimeout bounds a convertProjectFiles POST. Conversion of
	// a large PDF can take minutes before the server answers at all.
	DefaultConvertTimeout = 10 * time.Minute

	pollInterval = time.Second
)

// Client issues AJAX calls against one OCR4all server. The embedded
// http.Client carries the session cookie, so a Client corresponds to one
// browser session; do not share a Client across concurrent workflows.
type Client struct {
	baseURL    string
	httpClient *http.Client

	httpTimeout    time.Duration
	execTimeout    time.Duration
	convertTimeout time.Duration

	// Origin and Referer sent with processFlow/execute. The OCR4all side
	// checks these when it runs behind a proxy that enforces them.
	origin  string
	referer string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient supplies a prepared http.Client. The client should carry a
// cookie jar, otherwise the OCR4all session is lost between calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithHTTPTimeout overrides the per-call timeout for plain AJAX requests.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpTimeout = d }
}

// WithExecTimeout overrides the timeout for processFlow/execute POSTs.
func WithExecTimeout(d time.Duration) Option {
	return func(c *Client) { c.execTimeout = d }
}

// WithConvertTimeout overrides the timeout for convertProjectFiles POSTs.
func WithConvertTimeout(d time.Duration) Option {
	return func(c *Client) { c.convertTimeout = d }
}

// WithOriginReferer overrides the Origin and Referer headers sent with
// processFlow/execute. Empty values keep the defaults derived from the
// base URL.
func WithOriginReferer(origin, referer string) Option {
	return func(c *Client) {
		if origin != "" {
			c.origin = origin
		}
		if referer != "" {
			c.referer = referer
		}
	}
}

// New returns a Client for the OCR4all server at baseURL, e.g.
// "http://ocr4all:8080". A cookie-jar-backed http.Client is created unless
// one is supplied via WithHTTPClient.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		return nil, errors.New("ocr4all base URL must not be empty")
	}

	c := &Client{
		baseURL:        baseURL,
		httpTimeout:    DefaultHTTPTimeout,
		execTimeout:    DefaultExecTimeout,
		convertTimeout: DefaultConvertTimeout,
		origin:         baseURL,
		referer:        baseURL + "/ProcessFlow",
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, errors.Wrap(err, "create cookie jar")
		}
		c.httpClient = &http.Client{Jar: jar}
	}

	return c, nil
}

// BaseURL returns the server base URL the Client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) endpointURL(endpoint string, params url.Values) string {
	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// get issues a GET against endpoint and returns the raw body. Any non-2xx
// status is surfaced as an EndpointError.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, endpoint, params, nil, nil)
}

// getText is get with the body trimmed of surrounding whitespace, which is
// how OCR4all delivers its boolean and status responses.
func (c *Client) getText(ctx context.Context, endpoint string, params url.Values) (string, error) {
	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// postJSON POSTs payload as JSON. Extra headers are set on top of the JSON
// Accept/Content-Type pair. The returned response is not consumed beyond the
// status check; callers get the body and status code.
func (c *Client) postJSON(ctx context.Context, endpoint string, payload interface{}, headers http.Header, timeout time.Duration) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "marshal request for %s", endpoint)
	}

	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("Content-Type", "application/json")
	for k, vs := range headers {
		for _, v := range vs {
			h.Set(k, v)
		}
	}

	return c.roundTrip(ctx, http.MethodPost, c.endpointURL(endpoint, nil), h, bytes.NewReader(data), timeout)
}

// postForm POSTs an urlencoded form body.
func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values, timeout time.Duration) (int, []byte, error) {
	h := http.Header{}
	h.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.roundTrip(ctx, http.MethodPost, c.endpointURL(endpoint, nil), h, strings.NewReader(form.Encode()), timeout)
}

func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values, headers http.Header, body io.Reader) ([]byte, error) {
	status, respBody, err := c.roundTrip(ctx, method, c.endpointURL(endpoint, params), headers, body, c.httpTimeout)
	if err != nil {
		return nil, errors.Wrapf(err, "request %s", endpoint)
	}
	if status < 200 || status >= 300 {
		return nil, &EndpointError{Endpoint: endpoint, StatusCode: status, Snippet: snippet(respBody)}
	}
	return respBody, nil
}

func (c *Client) roundTrip(ctx context.Context, method, rawURL string, headers http.Header, body io.Reader, timeout time.Duration) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return 0, nil, errors.Wrap(err, "create request")
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errors.Wrap(err, "read response body")
	}

	log.Debugf("ocr4all %s %s -> HTTP %d, len=%d", method, req.URL.Path, resp.StatusCode, len(respBody))
	return resp.StatusCode, respBody, nil
}
