package engine_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/dockhand-io/dockhand/pkg/engine"
)

// fakeNetworks is a programmable engine.NetworksClient used by batch
// and manifest tests.
type fakeNetworks struct {
	mu sync.Mutex

	createFunc     func(ctx context.Context, options engine.CreateNetworkOptions[string]) (*engine.CreateNetworkResults, error)
	removeFunc     func(ctx context.Context, name string) error
	inspectFunc    func(ctx context.Context, name string, options *engine.InspectNetworkOptions[string]) (*engine.InspectNetworkResults, error)
	listFunc       func(ctx context.Context, options *engine.ListNetworksOptions[string]) ([]engine.ListNetworksResults, error)
	connectFunc    func(ctx context.Context, name string, options engine.ConnectNetworkOptions[string]) error
	disconnectFunc func(ctx context.Context, name string, options engine.DisconnectNetworkOptions[string]) error
	pruneFunc      func(ctx context.Context, options *engine.PruneNetworksOptions[string]) (*engine.PruneNetworksResults, error)

	calls []string
}

func (f *fakeNetworks) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, call)
}

func (f *fakeNetworks) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.calls...)
}

func (f *fakeNetworks) Create(ctx context.Context, options engine.CreateNetworkOptions[string]) (*engine.CreateNetworkResults, error) {
	f.record("create " + options.Name)

	if f.createFunc != nil {
		return f.createFunc(ctx, options)
	}

	return &engine.CreateNetworkResults{ID: "id-" + options.Name}, nil
}

func (f *fakeNetworks) Remove(ctx context.Context, name string) error {
	f.record("remove " + name)

	if f.removeFunc != nil {
		return f.removeFunc(ctx, name)
	}

	return nil
}

func (f *fakeNetworks) Inspect(ctx context.Context, name string, options *engine.InspectNetworkOptions[string]) (*engine.InspectNetworkResults, error) {
	f.record("inspect " + name)

	if f.inspectFunc != nil {
		return f.inspectFunc(ctx, name, options)
	}

	return &engine.InspectNetworkResults{Name: name}, nil
}

func (f *fakeNetworks) List(ctx context.Context, options *engine.ListNetworksOptions[string]) ([]engine.ListNetworksResults, error) {
	f.record("list")

	if f.listFunc != nil {
		return f.listFunc(ctx, options)
	}

	return nil, nil
}

func (f *fakeNetworks) Connect(ctx context.Context, name string, options engine.ConnectNetworkOptions[string]) error {
	f.record(fmt.Sprintf("connect %s %s", name, options.Container))

	if f.connectFunc != nil {
		return f.connectFunc(ctx, name, options)
	}

	return nil
}

func (f *fakeNetworks) Disconnect(ctx context.Context, name string, options engine.DisconnectNetworkOptions[string]) error {
	f.record(fmt.Sprintf("disconnect %s %s", name, options.Container))

	if f.disconnectFunc != nil {
		return f.disconnectFunc(ctx, name, options)
	}

	return nil
}

func (f *fakeNetworks) Prune(ctx context.Context, options *engine.PruneNetworksOptions[string]) (*engine.PruneNetworksResults, error) {
	f.record("prune")

	if f.pruneFunc != nil {
		return f.pruneFunc(ctx, options)
	}

	return &engine.PruneNetworksResults{}, nil
}

// fakeClient composes fakeNetworks into an engine.Client.
type fakeClient struct {
	networks *fakeNetworks
}

func (c *fakeClient) Networks() engine.NetworksClient[string] {
	return c.networks
}

func (c *fakeClient) System() engine.SystemClient {
	return nil
}
