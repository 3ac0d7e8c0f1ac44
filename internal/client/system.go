package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dockhand-io/dockhand/internal/http"
	"github.com/dockhand-io/dockhand/pkg/engine"
)

// SystemClient implements engine.SystemClient.
type SystemClient struct {
	httpClient *http.Client
}

// NewSystemClient creates a new system client.
func NewSystemClient(httpClient *http.Client) *SystemClient {
	return &SystemClient{httpClient: httpClient}
}

// Ping implements engine.SystemClient.Ping. The daemon reports its
// capabilities in response headers rather than the body.
func (c *SystemClient) Ping(ctx context.Context) (*engine.PingResults, error) {
	resp, err := c.httpClient.Get(ctx, "/_ping", nil)
	if err != nil {
		return nil, fmt.Errorf("pinging daemon: %w", err)
	}

	results := &engine.PingResults{
		APIVersion:     resp.Headers.Get("API-Version"),
		OSType:         resp.Headers.Get("OSType"),
		BuilderVersion: resp.Headers.Get("Builder-Version"),
		Experimental:   resp.Headers.Get("Docker-Experimental") == "true",
	}

	return results, nil
}

// Version implements engine.SystemClient.Version.
func (c *SystemClient) Version(ctx context.Context) (*engine.VersionResults, error) {
	resp, err := c.httpClient.Get(ctx, "/version", nil)
	if err != nil {
		return nil, fmt.Errorf("getting daemon version: %w", err)
	}

	var results engine.VersionResults

	err = json.Unmarshal(resp.Body, &results)
	if err != nil {
		return nil, &engine.DecodeError{What: "version response", Err: err}
	}

	return &results, nil
}

// Info implements engine.SystemClient.Info.
func (c *SystemClient) Info(ctx context.Context) (*engine.InfoResults, error) {
	resp, err := c.httpClient.Get(ctx, "/info", nil)
	if err != nil {
		return nil, fmt.Errorf("getting daemon info: %w", err)
	}

	var results engine.InfoResults

	err = json.Unmarshal(resp.Body, &results)
	if err != nil {
		return nil, &engine.DecodeError{What: "info response", Err: err}
	}

	return &results, nil
}
