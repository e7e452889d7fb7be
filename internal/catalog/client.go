package catalog

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"refcat/internal/config"
)

// HTTPDoer describes the HTTP client used to reach the catalog.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client wraps the catalog's passport and data-file endpoints. One Client is
// the session scope for a batch run; call CloseIdle when the batch finishes.
type Client struct {
	baseURL     string
	downloadURL string
	userKey     string
	httpClient  HTTPDoer
	transport   *http.Transport
}

// Option customizes the catalog client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client (used in tests).
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
			c.transport = nil
		}
	}
}

// WithBaseURL overrides the passport endpoint base.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithDownloadURL overrides the data-file endpoint base.
func WithDownloadURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.downloadURL = strings.TrimRight(base, "/")
		}
	}
}

// NewClient constructs a catalog client from configuration.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	client := &Client{}
	if cfg != nil {
		client.baseURL = strings.TrimRight(cfg.Catalog.BaseURL, "/")
		client.downloadURL = strings.TrimRight(cfg.Catalog.DownloadURL, "/")
		client.userKey = strings.TrimSpace(cfg.Catalog.UserKey)

		transport := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.Catalog.InsecureSkipVerify {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
		client.transport = transport
		client.httpClient = &http.Client{
			Timeout:   time.Duration(cfg.Catalog.RequestTimeout) * time.Second,
			Transport: transport,
		}
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return client
}

// FetchPassport requests the latest-version passport for one identifier.
func (c *Client) FetchPassport(ctx context.Context, oid string) (Passport, error) {
	params := url.Values{}
	params.Set("userKey", c.userKey)
	params.Set("identifier", oid)
	params.Set("sort", "version")
	params.Set("direction", "desc")

	endpoint := fmt.Sprintf("%s/passport?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Passport{}, Wrap(ErrResolution, "passport", "build request", oid, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Passport{}, Wrap(ErrResolution, "passport", "request", oid, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Passport{}, Wrap(ErrResolution, "passport", "request", fmt.Sprintf("%s: status %d", oid, resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Passport{}, Wrap(ErrResolution, "passport", "read response", oid, err)
	}
	return parsePassportPayload(body)
}

// DownloadArchive fetches the compressed tabular export for one
// identifier+version pair and returns the raw archive bytes.
func (c *Client) DownloadArchive(ctx context.Context, oid, version string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/%s_%s_csv.zip", c.downloadURL, oid, version)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, Wrap(ErrDownload, "archive", "build request", oid, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, Wrap(ErrDownload, "archive", "request", oid, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, Wrap(ErrDownload, "archive", "request", fmt.Sprintf("%s: status %d", oid, resp.StatusCode), nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Wrap(ErrDownload, "archive", "read body", oid, err)
	}
	return data, nil
}

// CloseIdle releases pooled connections held by the client's transport.
// Callers invoke it when a batch run completes.
func (c *Client) CloseIdle() {
	if c.transport != nil {
		c.transport.CloseIdleConnections()
	}
}
