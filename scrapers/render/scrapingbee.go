// Package render wraps the ScrapingBee remote-render proxy: it loads a page
// in a real browser on our behalf and returns the resulting HTML.
//
// Every call consumes one unit of paid quota. Nothing here retries.
package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	http "github.com/bogdanfinn/fhttp"

	"contractor-lookup-go/tlsclient"
)

// ErrNotConfigured is returned before any request when no API key is set.
var ErrNotConfigured = errors.New("render: proxy API key not configured")

// TransportError covers network failures and non-2xx proxy responses.
type TransportError struct {
	Op         string // "fetch" or "submit"
	StatusCode int    // 0 for network failures
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("render: %s: HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("render: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Options are the per-call control parameters sent to the proxy.
type Options struct {
	RenderJS     bool
	Wait         time.Duration
	PremiumProxy bool
	UserAgent    string // POST only; forwarded to the target in the headers map
}

// Client talks to the proxy API.
type Client struct {
	apiKey     string
	baseURL    string
	newSession tlsclient.SessionFactory
	calls      atomic.Int64
}

// NewClient returns a proxy client. An empty apiKey yields a client whose
// calls all fail with ErrNotConfigured.
func NewClient(apiKey, baseURL string, newSession tlsclient.SessionFactory) *Client {
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    baseURL,
		newSession: newSession,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c != nil && c.apiKey != "" }

// CallsIssued is the number of proxy requests sent so far (quota units spent).
func (c *Client) CallsIssued() int64 { return c.calls.Load() }

// FetchRenderedPage GETs targetURL through the proxy and returns the rendered HTML.
func (c *Client) FetchRenderedPage(ctx context.Context, targetURL string, opts Options) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	params := url.Values{
		"api_key":   {c.apiKey},
		"url":       {targetURL},
		"render_js": {strconv.FormatBool(opts.RenderJS)},
		"wait":      {strconv.FormatInt(opts.Wait.Milliseconds(), 10)},
	}
	if opts.PremiumProxy {
		params.Set("premium_proxy", "true")
	}

	reqURL := c.baseURL
	if strings.Contains(reqURL, "?") {
		reqURL += "&" + params.Encode()
	} else {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("render: fetch request build error: %w", err)
	}
	req.Header = http.Header{
		"Accept":            {"text/html"},
		http.HeaderOrderKey: {"Accept"},
	}

	return c.do(req, "fetch")
}

// submitPayload is the JSON body for form submissions. Headers is a
// serialized JSON map, not a nested object.
type submitPayload struct {
	APIKey       string `json:"api_key"`
	URL          string `json:"url"`
	RenderJS     string `json:"render_js"`
	Wait         int64  `json:"wait"`
	PremiumProxy string `json:"premium_proxy,omitempty"`
	PostData     string `json:"post_data"`
	Headers      string `json:"headers"`
}

// SubmitForm POSTs an URL-encoded form body to targetURL through the proxy.
func (c *Client) SubmitForm(ctx context.Context, targetURL, encodedBody string, opts Options) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	fwd := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	if opts.UserAgent != "" {
		fwd["User-Agent"] = opts.UserAgent
	}
	fwdJSON, err := json.Marshal(fwd)
	if err != nil {
		return "", fmt.Errorf("render: encode headers: %w", err)
	}

	payload := submitPayload{
		APIKey:   c.apiKey,
		URL:      targetURL,
		RenderJS: strconv.FormatBool(opts.RenderJS),
		Wait:     opts.Wait.Milliseconds(),
		PostData: encodedBody,
		Headers:  string(fwdJSON),
	}
	if opts.PremiumProxy {
		payload.PremiumProxy = "true"
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("render: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("render: submit request build error: %w", err)
	}
	req.Header = http.Header{
		"Content-Type":      {"application/json"},
		"Accept":            {"text/html"},
		http.HeaderOrderKey: {"Content-Type", "Accept"},
	}

	return c.do(req, "submit")
}

func (c *Client) do(req *http.Request, op string) (string, error) {
	session, err := c.newSession()
	if err != nil {
		return "", fmt.Errorf("render: session error: %w", err)
	}

	c.calls.Add(1)
	resp, err := session.Do(req)
	if err != nil {
		return "", &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &TransportError{Op: op, StatusCode: resp.StatusCode}
	}

	return string(body), nil
}
