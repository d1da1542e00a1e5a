// Package soap provides the minimal HTTP transport the AFIP services
// need: one POST with a SOAPAction header, a caller-configurable
// timeout, and network failures mapped to the fiscal error taxonomy.
// Envelope shape and fault semantics live in the service codecs, not here.
package soap

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rezonia/afip-client/internal/model"
)

// DefaultTimeout bounds every remote round trip unless overridden.
const DefaultTimeout = 15 * time.Second

// Response is a raw transport result. Body is returned even on non-2xx
// statuses: AFIP delivers SOAP faults with status 500 and the codec
// must get a chance to parse them.
type Response struct {
	Status int
	Body   []byte
}

// Client posts SOAP envelopes.
type Client struct {
	httpClient *http.Client
}

// Option configures the client
type Option func(*config)

type config struct {
	timeout    time.Duration
	httpClient *http.Client
	legacyTLS  bool
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(cfg *config) {
		cfg.timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely. The
// caller then owns timeout and TLS behavior.
func WithHTTPClient(h *http.Client) Option {
	return func(cfg *config) {
		cfg.httpClient = h
	}
}

// WithLegacyTLS relaxes TLS negotiation for AFIP's older frontends,
// which still require renegotiation and pre-1.2 protocol offers.
func WithLegacyTLS() Option {
	return func(cfg *config) {
		cfg.legacyTLS = true
	}
}

// NewClient creates a transport client.
func NewClient(opts ...Option) *Client {
	cfg := &config{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.httpClient != nil {
		return &Client{httpClient: cfg.httpClient}
	}

	client := &http.Client{Timeout: cfg.timeout}
	if cfg.legacyTLS {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion:    tls.VersionTLS10,
				Renegotiation: tls.RenegotiateOnceAsClient,
			},
		}
	}
	return &Client{httpClient: client}
}

// Call posts envelope to url with the given SOAPAction. It returns the
// raw response even for non-2xx statuses; the only errors it produces
// are network errors (timeout, cancellation, connection failure,
// unreadable body).
func (c *Client) Call(ctx context.Context, url, action string, envelope []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(envelope))
	if err != nil {
		return nil, model.NewNetworkError("failed to build request", err)
	}
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	if action != "" {
		req.Header.Set("SOAPAction", action)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, model.NewNetworkError("request cancelled or timed out", err)
		}
		return nil, model.NewNetworkError("request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewNetworkError("failed to read response body", err)
	}

	return &Response{Status: resp.StatusCode, Body: body}, nil
}
