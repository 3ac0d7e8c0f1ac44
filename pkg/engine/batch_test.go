package engine_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/dockhand-io/dockhand/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchExecutor_Execute(t *testing.T) {
	t.Parallel()

	networks := &fakeNetworks{}
	executor := engine.NewBatchExecutor(&fakeClient{networks: networks}, 2)

	operations := engine.NewBatchBuilder().
		AddCreateNetwork("op-1", &engine.CreateNetworkOptions[string]{Name: "frontend"}).
		AddCreateNetwork("op-2", &engine.CreateNetworkOptions[string]{Name: "backend"}).
		AddRemoveNetwork("op-3", "legacy").
		Build()

	results, err := executor.Execute(context.Background(), operations)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Results line up with the submitted operations regardless of
	// completion order.
	assert.Equal(t, "op-1", results[0].ID)
	assert.Equal(t, "op-2", results[1].ID)
	assert.Equal(t, "op-3", results[2].ID)

	for _, result := range results {
		assert.True(t, result.Success)
		assert.NoError(t, result.Error)
		assert.Positive(t, result.Duration)
	}

	created, ok := results[0].Data.(*engine.CreateNetworkResults)
	require.True(t, ok)
	assert.Equal(t, "id-frontend", created.ID)
}

func TestBatchExecutor_ConnectAndDisconnect(t *testing.T) {
	t.Parallel()

	networks := &fakeNetworks{}
	executor := engine.NewBatchExecutor(&fakeClient{networks: networks}, 1)

	operations := engine.NewBatchBuilder().
		AddConnect("c-1", "backend", engine.ConnectNetworkOptions[string]{Container: "web"}).
		AddDisconnect("d-1", "backend", engine.DisconnectNetworkOptions[string]{Container: "old", Force: true}).
		AddInspect("i-1", "backend", nil).
		Build()

	results, err := executor.Execute(context.Background(), operations)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, result := range results {
		assert.True(t, result.Success, "operation %s", result.ID)
	}

	assert.Equal(t, []string{
		"connect backend web",
		"disconnect backend old",
		"inspect backend",
	}, networks.recorded())
}

func TestBatchExecutor_FailuresAreIsolated(t *testing.T) {
	t.Parallel()

	networks := &fakeNetworks{
		removeFunc: func(ctx context.Context, name string) error {
			if name == "stuck" {
				return &engine.DaemonError{
					StatusCode: http.StatusConflict,
					Message:    "network stuck has active endpoints",
				}
			}

			return nil
		},
	}
	executor := engine.NewBatchExecutor(&fakeClient{networks: networks}, 2)

	operations := engine.NewBatchBuilder().
		AddRemoveNetwork("ok", "idle").
		AddRemoveNetwork("fail", "stuck").
		Build()

	results, err := executor.Execute(context.Background(), operations)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.True(t, engine.IsConflict(results[1].Error))
}

func TestBatchExecutor_InvalidOperationData(t *testing.T) {
	t.Parallel()

	executor := engine.NewBatchExecutor(&fakeClient{networks: &fakeNetworks{}}, 1)

	results, err := executor.Execute(context.Background(), []engine.BatchOperation{
		{ID: "bad-data", Type: "create", Data: 42},
		{ID: "bad-type", Type: "scale", Data: nil},
		{ID: "empty-name", Type: "remove", Data: ""},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.ErrorIs(t, results[0].Error, engine.ErrInvalidOperationData)
	assert.ErrorIs(t, results[1].Error, engine.ErrUnknownOperationType)
	assert.ErrorIs(t, results[2].Error, engine.ErrNetworkNameRequired)
}

func TestBatchExecutor_Callback(t *testing.T) {
	t.Parallel()

	executor := engine.NewBatchExecutor(&fakeClient{networks: &fakeNetworks{}}, 1)

	var callbackID string

	operations := []engine.BatchOperation{
		{
			ID:   "cb",
			Type: "remove",
			Data: "doomed",
			Callback: func(result *engine.BatchResult) {
				callbackID = result.ID
			},
		},
	}

	_, err := executor.Execute(context.Background(), operations)
	require.NoError(t, err)
	assert.Equal(t, "cb", callbackID)
}

func TestBatchTransaction_RollbackOnFailure(t *testing.T) {
	t.Parallel()

	networks := &fakeNetworks{
		createFunc: func(ctx context.Context, options engine.CreateNetworkOptions[string]) (*engine.CreateNetworkResults, error) {
			if options.Name == "broken" {
				return nil, &engine.DaemonError{
					StatusCode: http.StatusForbidden,
					Message:    "operation not permitted",
				}
			}

			return &engine.CreateNetworkResults{ID: "id-" + options.Name}, nil
		},
	}
	executor := engine.NewBatchExecutor(&fakeClient{networks: networks}, 1)

	transaction := engine.NewBatchTransaction(executor).
		Add(engine.BatchOperation{ID: "t-1", Type: "create", Data: &engine.CreateNetworkOptions[string]{Name: "good"}}).
		Add(engine.BatchOperation{ID: "t-2", Type: "create", Data: &engine.CreateNetworkOptions[string]{Name: "broken"}})

	results, err := transaction.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrTransactionFailed)
	require.Len(t, results, 2)

	// The successfully created network was removed again by its ID.
	assert.Contains(t, networks.recorded(), "remove id-good")
}

func TestBatchTransaction_NoRollbackWhenDisabled(t *testing.T) {
	t.Parallel()

	networks := &fakeNetworks{
		connectFunc: func(ctx context.Context, name string, options engine.ConnectNetworkOptions[string]) error {
			return &engine.DaemonError{StatusCode: http.StatusNotFound, Message: "no such container"}
		},
	}
	executor := engine.NewBatchExecutor(&fakeClient{networks: networks}, 1)

	transaction := engine.NewBatchTransaction(executor).
		SetRollback(false).
		Add(engine.BatchOperation{ID: "t-1", Type: "create", Data: &engine.CreateNetworkOptions[string]{Name: "kept"}}).
		Add(engine.BatchOperation{
			ID:   "t-2",
			Type: "connect",
			Data: &engine.ConnectPayload{Network: "kept", Options: engine.ConnectNetworkOptions[string]{Container: "ghost"}},
		})

	results, err := transaction.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.NotContains(t, networks.recorded(), "remove id-kept")
}

func TestBatchTransaction_RollbackDisconnectsConnected(t *testing.T) {
	t.Parallel()

	networks := &fakeNetworks{
		removeFunc: func(ctx context.Context, name string) error {
			return &engine.DaemonError{StatusCode: http.StatusConflict, Message: "in use"}
		},
	}
	executor := engine.NewBatchExecutor(&fakeClient{networks: networks}, 1)

	transaction := engine.NewBatchTransaction(executor).
		Add(engine.BatchOperation{
			ID:   "t-1",
			Type: "connect",
			Data: &engine.ConnectPayload{Network: "backend", Options: engine.ConnectNetworkOptions[string]{Container: "web"}},
		}).
		Add(engine.BatchOperation{ID: "t-2", Type: "remove", Data: "busy"})

	_, err := transaction.Execute(context.Background())
	require.Error(t, err)

	// The connect succeeded, so rollback force-disconnects it.
	assert.Contains(t, networks.recorded(), "disconnect backend web")
}
