package chakra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL is the production Chakra API endpoint.
	DefaultBaseURL = "https://api.chakra.dev/api/v1"

	defaultUserAgent = "chakra-go"
)

// RequestOption allows for functional overrides on individual requests.
type RequestOption func(*http.Request)

// ClientOption configures a Client during construction.
type ClientOption func(*Client)

// WithBaseURL overrides the default API endpoint. Useful for testing against
// a local or mock server.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.rawBaseURL = baseURL
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets a request timeout on the underlying HTTP client.
// The zero value keeps the transport default, matching the service contract.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithUserAgent overrides the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// Client is a synchronous client for the Chakra API. It holds the parsed
// credential triple, the HTTP connection state, and the bearer token obtained
// by Login.
//
// A Client is not safe for concurrent use: Login mutates the token state that
// every other operation reads, with no lock. Callers that share a Client
// across goroutines must provide their own synchronization.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	rawBaseURL string
	userAgent  string

	// Credential triple, immutable after construction.
	accessKey string
	secretKey string
	username  string

	// token is empty until Login succeeds. Login is the only writer.
	token string
}

// NewClient creates a Client from a colon-delimited credential string of the
// form "accessKey:secretKey:username". A wrong field count returns a
// *CredentialsError. The new client holds no token; call Login before any
// data operation.
func NewClient(credentials string, opts ...ClientOption) (*Client, error) {
	fields := strings.Split(credentials, ":")
	if len(fields) != 3 {
		return nil, &CredentialsError{FieldCount: len(fields)}
	}

	c := &Client{
		httpClient: &http.Client{},
		rawBaseURL: DefaultBaseURL,
		userAgent:  defaultUserAgent,
		accessKey:  fields[0],
		secretKey:  fields[1],
		username:   fields[2],
	}

	for _, opt := range opts {
		opt(c)
	}

	parsed, err := url.Parse(strings.TrimRight(c.rawBaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	c.baseURL = parsed

	return c, nil
}

// BaseURL returns the API endpoint this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// requireAuth fails fast when no token is held. Data operations call this
// before building their request, so unauthenticated calls never reach the
// network.
func (c *Client) requireAuth(op string) error {
	if c.token == "" {
		return fmt.Errorf("%s: %w", op, ErrAuthRequired)
	}
	return nil
}

// NewRequest builds an http.Request against the client's base URL, accepting
// optional overrides. A non-nil body is JSON-encoded. The bearer token, when
// held, is attached as the Authorization header.
func (c *Client) NewRequest(method, path string, body any, opts ...RequestOption) (*http.Request, error) {
	u := c.baseURL.JoinPath(path)

	bodyReader, err := c.prepareRequestBody(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(method, u.String(), bodyReader)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	// Apply functional options for specific request overrides
	for _, opt := range opts {
		opt(req)
	}

	return req, nil
}

func (c *Client) prepareRequestBody(body any) (io.Reader, error) {
	if body == nil {
		return nil, nil
	}
	jsonBuf := &bytes.Buffer{}
	if err := json.NewEncoder(jsonBuf).Encode(body); err != nil {
		return nil, err
	}
	return jsonBuf, nil
}

// Do executes the request and decodes a 2xx JSON response into v when v is
// non-nil. Non-2xx responses are returned as an *APIError. Transport errors
// surface unmodified; there is no retry or backoff.
func (c *Client) Do(ctx context.Context, req *http.Request, v any) (*http.Response, error) {
	req = req.WithContext(ctx)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", req.URL.String()).Msg("request failed")
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return resp, newAPIError(resp)
	}

	err = c.decodeResponseBody(resp, v)
	return resp, err
}

func (c *Client) decodeResponseBody(resp *http.Response, v any) (err error) {
	defer func() {
		closeErr := resp.Body.Close()
		if err == nil {
			err = closeErr
		}
	}()

	if v == nil {
		return nil
	}

	if err = json.NewDecoder(resp.Body).Decode(v); err != nil {
		// Empty bodies are valid for status-only endpoints.
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("failed to decode JSON: %w", err)
	}

	return nil
}
