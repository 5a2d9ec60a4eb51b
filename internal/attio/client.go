package attio

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	DEFAULT_BASE_URL = "https://api.attio.com/v2"
	DEFAULT_TIMEOUT  = 10 * time.Second
	MAX_REDIRECTS    = 10
)

// Client wraps calls to the Attio REST API. It holds no credential: every
// operation takes the caller's token and presents it as a bearer header
type Client struct {
	baseURL   string
	timeout   time.Duration
	transport http.RoundTripper
	logger    *log.Logger
}

// Option configures a Client
type Option func(*Client)

// WithTimeout bounds each outbound call, including reading the response body
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithTransport replaces the round tripper used for outbound calls
func WithTransport(transport http.RoundTripper) Option {
	return func(c *Client) {
		if transport != nil {
			c.transport = transport
		}
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for the API rooted at baseURL (DEFAULT_BASE_URL when empty)
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeout:   DEFAULT_TIMEOUT,
		transport: http.DefaultTransport,
		logger:    log.StandardLogger(),
	}

	if c.baseURL == "" {
		c.baseURL = DEFAULT_BASE_URL
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-call timeout
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// envelope is the wrapper Attio puts around every successful response
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// call describes a single outbound request
type call struct {
	method  string
	path    string
	query   url.Values
	body    any
	onError string // Message used when Attio rejects the request
}

// authorizedClient builds an HTTP client that presents credential as a bearer token.
// The token is added on every hop, so redirects are only followed on the original
// scheme and host
func (c *Client) authorizedClient(credential string) *http.Client {
	return &http.Client{
		Timeout: c.timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: credential, TokenType: "Bearer"}),
			Base:   c.transport,
		},
		CheckRedirect: sameOriginRedirect,
	}
}

// sameOriginRedirect stops at the redirect response when the next hop leaves the
// origin of the first request. The 3xx is then reported as a rejection
func sameOriginRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= MAX_REDIRECTS {
		return http.ErrUseLastResponse
	}

	origin := via[0].URL
	if req.URL.Scheme != origin.Scheme || req.URL.Host != origin.Host {
		return http.ErrUseLastResponse
	}
	return nil
}

// doJSON performs one request and returns the `data` member of the response
func (c *Client) doJSON(ctx context.Context, credential string, in call) (json.RawMessage, error) {
	if credential == "" {
		return nil, missingCredential()
	}

	// Create request body if input is provided
	var body io.Reader
	if in.body != nil {
		b, err := json.Marshal(in.body)
		if err != nil {
			return nil, internalError("failed to encode request body", err)
		}
		body = bytes.NewReader(b)
	}

	endpoint := c.baseURL + in.path
	if len(in.query) > 0 {
		endpoint += "?" + in.query.Encode()
	}

	// Create the request
	req, err := http.NewRequestWithContext(ctx, in.method, endpoint, body)
	if err != nil {
		return nil, internalError("failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	c.logger.WithContext(ctx).Debugf("making attio request %s %s...", in.method, in.path)

	// Perform the request
	resp, err := c.authorizedClient(credential).Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	c.logger.WithContext(ctx).Debugf("attio responded %d, read %d bytes", resp.StatusCode, len(raw))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, remoteRejected(in.onError, resp.StatusCode, raw)
	}

	var out envelope
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, internalError("failed to decode attio response", err)
	}

	return out.Data, nil
}
