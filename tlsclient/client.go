package tlsclient

import (
	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	tls_client_profiles "github.com/bogdanfinn/tls-client/profiles"
)

// Doer is the part of a session the render client needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// SessionFactory creates a fresh session with its own cookie jar.
type SessionFactory func() (Doer, error)

// Client is a factory for TLS client sessions with Chrome fingerprints.
type Client struct {
	timeoutSeconds int
}

// New creates a new TLS client factory. timeoutSeconds <= 0 uses 90s,
// which leaves room for the proxy's JS render wait.
func New(timeoutSeconds int) *Client {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 90
	}
	return &Client{timeoutSeconds: timeoutSeconds}
}

// NewSession creates a fresh HTTP client with an isolated cookie jar and Chrome_124 fingerprint.
// Every proxy call gets its own session; nothing is shared between searches.
func (c *Client) NewSession() (Doer, error) {
	jar := tls_client.NewCookieJar()
	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(c.timeoutSeconds),
		tls_client.WithClientProfile(tls_client_profiles.Chrome_124),
		tls_client.WithCookieJar(jar),
	}

	client, err := tls_client.NewHttpClient(nil, options...)
	if err != nil {
		return nil, err
	}

	return client, nil
}
