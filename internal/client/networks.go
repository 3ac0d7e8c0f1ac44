package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dockhand-io/dockhand/internal/http"
	"github.com/dockhand-io/dockhand/pkg/engine"
)

// NetworksClient implements engine.NetworksClient over the Engine API.
type NetworksClient[T engine.Text] struct {
	httpClient *http.Client
}

// NewNetworksClient creates a new networks client.
func NewNetworksClient[T engine.Text](httpClient *http.Client) *NetworksClient[T] {
	return &NetworksClient[T]{httpClient: httpClient}
}

// Create implements engine.NetworksClient.Create.
func (c *NetworksClient[T]) Create(ctx context.Context, options engine.CreateNetworkOptions[T]) (*engine.CreateNetworkResults, error) {
	resp, err := c.httpClient.Post(ctx, "/networks/create", nil, options)
	if err != nil {
		return nil, fmt.Errorf("creating network: %w", err)
	}

	var results engine.CreateNetworkResults

	err = json.Unmarshal(resp.Body, &results)
	if err != nil {
		return nil, &engine.DecodeError{What: "create network response", Err: err}
	}

	return &results, nil
}

// Remove implements engine.NetworksClient.Remove.
func (c *NetworksClient[T]) Remove(ctx context.Context, name string) error {
	path := fmt.Sprintf("/networks/%s", name)

	_, err := c.httpClient.Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("removing network: %w", err)
	}

	return nil
}

// Inspect implements engine.NetworksClient.Inspect. A nil options
// pointer sends no query parameters.
func (c *NetworksClient[T]) Inspect(ctx context.Context, name string, options *engine.InspectNetworkOptions[T]) (*engine.InspectNetworkResults, error) {
	var params engine.Params

	if options != nil {
		encoded, err := options.EncodeParams()
		if err != nil {
			return nil, fmt.Errorf("inspecting network: %w", err)
		}

		params = encoded
	}

	path := fmt.Sprintf("/networks/%s", name)

	resp, err := c.httpClient.Get(ctx, path, params)
	if err != nil {
		return nil, fmt.Errorf("inspecting network: %w", err)
	}

	var results engine.InspectNetworkResults

	err = json.Unmarshal(resp.Body, &results)
	if err != nil {
		return nil, &engine.DecodeError{What: "inspect network response", Err: err}
	}

	return &results, nil
}

// List implements engine.NetworksClient.List. A nil options pointer
// sends no query parameters.
func (c *NetworksClient[T]) List(ctx context.Context, options *engine.ListNetworksOptions[T]) ([]engine.ListNetworksResults, error) {
	var params engine.Params

	if options != nil {
		encoded, err := options.EncodeParams()
		if err != nil {
			return nil, fmt.Errorf("listing networks: %w", err)
		}

		params = encoded
	}

	resp, err := c.httpClient.Get(ctx, "/networks", params)
	if err != nil {
		return nil, fmt.Errorf("listing networks: %w", err)
	}

	var results []engine.ListNetworksResults

	err = json.Unmarshal(resp.Body, &results)
	if err != nil {
		return nil, &engine.DecodeError{What: "network list response", Err: err}
	}

	return results, nil
}

// Connect implements engine.NetworksClient.Connect.
func (c *NetworksClient[T]) Connect(ctx context.Context, name string, options engine.ConnectNetworkOptions[T]) error {
	path := fmt.Sprintf("/networks/%s/connect", name)

	_, err := c.httpClient.Post(ctx, path, nil, options)
	if err != nil {
		return fmt.Errorf("connecting container to network: %w", err)
	}

	return nil
}

// Disconnect implements engine.NetworksClient.Disconnect.
func (c *NetworksClient[T]) Disconnect(ctx context.Context, name string, options engine.DisconnectNetworkOptions[T]) error {
	path := fmt.Sprintf("/networks/%s/disconnect", name)

	_, err := c.httpClient.Post(ctx, path, nil, options)
	if err != nil {
		return fmt.Errorf("disconnecting container from network: %w", err)
	}

	return nil
}

// Prune implements engine.NetworksClient.Prune. A nil options pointer
// sends no query parameters.
func (c *NetworksClient[T]) Prune(ctx context.Context, options *engine.PruneNetworksOptions[T]) (*engine.PruneNetworksResults, error) {
	var params engine.Params

	if options != nil {
		encoded, err := options.EncodeParams()
		if err != nil {
			return nil, fmt.Errorf("pruning networks: %w", err)
		}

		params = encoded
	}

	resp, err := c.httpClient.Post(ctx, "/networks/prune", params, nil)
	if err != nil {
		return nil, fmt.Errorf("pruning networks: %w", err)
	}

	var results engine.PruneNetworksResults

	err = json.Unmarshal(resp.Body, &results)
	if err != nil {
		return nil, &engine.DecodeError{What: "prune networks response", Err: err}
	}

	return &results, nil
}
