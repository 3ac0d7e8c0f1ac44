package client

import (
	"github.com/dockhand-io/dockhand/internal/http"
)

// NewTestClient creates a client against the given base URL, with no
// cache, interceptors, or API version prefix. Intended for tests
// driving an httptest server.
func NewTestClient(baseURL string) (*Client, error) {
	httpClient, err := http.NewClient(baseURL, http.WithAPIVersion(""))
	if err != nil {
		return nil, err
	}

	client := &Client{httpClient: httpClient}
	client.initializeResourceClients()

	return client, nil
}
