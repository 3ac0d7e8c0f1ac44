// Package http provides the low-level HTTP transport for the Docker
// Engine API. It handles daemon host schemes (unix, tcp, npipe), the
// API version path prefix, ordered query parameters, retries, and the
// interceptor chain. Consumers normally construct clients through
// pkg/engineclient instead of using this package directly.
package http

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/docker/go-connections/sockets"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/dockhand-io/dockhand/internal/constants"
	"github.com/dockhand-io/dockhand/pkg/engine"
)

// Client is the low-level HTTP client for the Engine API.
type Client struct {
	baseURL      string
	apiVersion   string
	userAgent    string
	httpClient   *retryablehttp.Client
	tlsConfig    *tls.Config
	logger       engine.Logger
	debug        bool
	interceptors *engine.InterceptorChain
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets a logger for the client.
func WithLogger(logger engine.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables debug logging of requests and responses.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header for all requests.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithAPIVersion pins the Engine API version used in request paths.
// An empty version disables the path prefix entirely.
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		c.apiVersion = strings.TrimPrefix(version, "v")
	}
}

// WithHTTPTimeout sets the timeout for individual HTTP requests.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithRetryConfig configures automatic retries. Without it every
// operation is a single exchange.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithTLSConfig sets the TLS configuration for tcp hosts.
func WithTLSConfig(tlsConfig *tls.Config) Option {
	return func(c *Client) {
		c.tlsConfig = tlsConfig
	}
}

// WithInterceptors sets the interceptor chain run around every
// exchange.
func WithInterceptors(chain *engine.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// NewClient creates a new Engine API client for the given daemon host.
// Supported host forms are unix://<path>, npipe://<path>,
// tcp://<host:port>, and http(s)://<host:port>.
func NewClient(host string, opts ...Option) (*Client, error) {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.Logger = nil

	client := &Client{
		apiVersion: constants.DefaultAPIVersion,
		userAgent:  "dockhand/" + constants.ClientVersion,
		httpClient: retryClient,
	}

	for _, opt := range opts {
		opt(client)
	}

	if err := client.configureHost(host); err != nil {
		return nil, err
	}

	return client, nil
}

// configureHost parses the daemon host and installs the matching
// transport on the underlying HTTP client.
func (c *Client) configureHost(host string) error {
	if host == "" {
		host = constants.DefaultDockerHost
	}

	proto, addr, found := strings.Cut(host, "://")
	if !found || addr == "" {
		return fmt.Errorf("%w: %q", engine.ErrInvalidHostURL, host)
	}

	transport := &http.Transport{TLSClientConfig: c.tlsConfig}

	switch proto {
	case "unix", "npipe":
		if err := sockets.ConfigureTransport(transport, proto, addr); err != nil {
			return fmt.Errorf("configuring %s transport: %w", proto, err)
		}

		// The host part of the URL is ignored for socket transports
		// but must be present for net/http to accept the request.
		c.baseURL = "http://docker"
	case "tcp":
		addr = strings.SplitN(addr, "/", 2)[0]

		if err := sockets.ConfigureTransport(transport, proto, addr); err != nil {
			return fmt.Errorf("configuring tcp transport: %w", err)
		}

		scheme := "http"
		if c.tlsConfig != nil {
			scheme = "https"
		}

		c.baseURL = scheme + "://" + addr
	case "http", "https":
		addr = strings.SplitN(addr, "/", 2)[0]

		if err := sockets.ConfigureTransport(transport, "tcp", addr); err != nil {
			return fmt.Errorf("configuring tcp transport: %w", err)
		}

		c.baseURL = proto + "://" + addr
	default:
		return fmt.Errorf("%w: %s", engine.ErrUnsupportedProtocol, proto)
	}

	c.httpClient.HTTPClient.Transport = transport

	return nil
}

// Request represents an API request.
type Request struct {
	Method  string
	Path    string
	Params  engine.Params
	Headers map[string]string
	Body    interface{}
}

// Response represents an API response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Do executes a request against the daemon. The response is returned
// alongside the error for non-2xx statuses so callers can still read
// status and headers.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	var bodyBytes []byte

	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &engine.EncodeError{What: "request body", Err: err}
		}

		bodyBytes = data
	}

	// Interceptors (caching policy, invalidation) match on the resource
	// path; the version prefix is a transport addressing detail and is
	// added only when the URL is built.
	resourcePath := req.Path
	if encoded := req.Params.Encode(); encoded != "" {
		resourcePath += "?" + encoded
	}

	requestURL := c.baseURL + c.apiPath(resourcePath)

	headers := make(http.Header)
	headers.Set("Accept", "application/json")

	if c.userAgent != "" {
		headers.Set("User-Agent", c.userAgent)
	}

	if bodyBytes != nil {
		headers.Set("Content-Type", "application/json")
	}

	for key, value := range req.Headers {
		headers.Set(key, value)
	}

	interceptorReq := &engine.Request{
		Method:   req.Method,
		Path:     resourcePath,
		Headers:  headers,
		Body:     bodyBytes,
		Metadata: make(map[string]interface{}),
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    requestURL,
		})
	}

	if c.interceptors != nil {
		if err := c.interceptors.ExecuteRequestInterceptors(ctx, interceptorReq); err != nil {
			return nil, err
		}

		if cached, ok := interceptorReq.Metadata[engine.MetadataCachedResponse].([]byte); ok {
			if c.debug && c.logger != nil {
				c.logger.Debug("HTTP Response", map[string]interface{}{
					"status": http.StatusOK,
					"url":    requestURL,
					"cached": true,
				})
			}

			return &Response{
				StatusCode: http.StatusOK,
				Headers:    make(http.Header),
				Body:       cached,
			}, nil
		}
	}

	var rawBody interface{}
	if bodyBytes != nil {
		rawBody = bodyBytes
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, requestURL, rawBody)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	for key, values := range headers {
		for _, value := range values {
			httpReq.Header.Set(key, value)
		}
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status": httpResp.StatusCode,
			"url":    requestURL,
		})
	}

	interceptorResp := &engine.Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
	}

	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		interceptorResp.Error = engine.ParseDaemonError(httpResp.StatusCode, body)
	}

	response := &Response{
		StatusCode: interceptorResp.StatusCode,
		Headers:    interceptorResp.Headers,
		Body:       interceptorResp.Body,
	}

	if c.interceptors != nil {
		if err := c.interceptors.ExecuteResponseInterceptors(ctx, interceptorReq, interceptorResp); err != nil {
			return response, err
		}

		response.Body = interceptorResp.Body
	}

	return response, interceptorResp.Error
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, params engine.Params) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Params: params})
}

// Post performs a POST request with an optional JSON body.
func (c *Client) Post(ctx context.Context, path string, params engine.Params, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Params: params, Body: body})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// Head performs a HEAD request.
func (c *Client) Head(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodHead, Path: path})
}

// APIVersion returns the Engine API version the client prefixes
// request paths with.
func (c *Client) APIVersion() string {
	return c.apiVersion
}

// BaseURL returns the resolved base URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) apiPath(path string) string {
	if c.apiVersion == "" {
		return path
	}

	return "/v" + c.apiVersion + path
}
