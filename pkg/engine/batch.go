package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dockhand-io/dockhand/internal/constants"
)

// BatchOperation represents a single operation in a batch. Each
// operation remains an independent request/response exchange; the
// executor only fans out and joins.
type BatchOperation struct {
	ID       string
	Type     string // "create", "remove", "connect", "disconnect", "inspect"
	Data     interface{}
	Callback func(result *BatchResult)
}

// BatchResult represents the result of a batch operation.
type BatchResult struct {
	ID       string
	Success  bool
	Data     interface{}
	Error    error
	Duration time.Duration
}

// ConnectPayload is the data for a "connect" batch operation.
type ConnectPayload struct {
	Network string
	Options ConnectNetworkOptions[string]
}

// DisconnectPayload is the data for a "disconnect" batch operation.
type DisconnectPayload struct {
	Network string
	Options DisconnectNetworkOptions[string]
}

// InspectPayload is the data for an "inspect" batch operation.
type InspectPayload struct {
	Network string
	Options *InspectNetworkOptions[string]
}

// BatchExecutor executes network operations with bounded concurrency.
// Typical use is connecting a fleet of containers to a network, or
// tearing a set of networks down.
type BatchExecutor struct {
	client      Client
	concurrency int
	timeout     time.Duration
}

// NewBatchExecutor creates a new batch executor.
func NewBatchExecutor(client Client, concurrency int) *BatchExecutor {
	if concurrency <= 0 {
		concurrency = constants.DefaultBatchConcurrency
	}

	return &BatchExecutor{
		client:      client,
		concurrency: concurrency,
		timeout:     constants.DefaultHTTPTimeout,
	}
}

// SetTimeout sets the per-operation timeout.
func (b *BatchExecutor) SetTimeout(timeout time.Duration) {
	b.timeout = timeout
}

// Execute runs a batch of operations. Results are returned in the
// order the operations were given, regardless of completion order.
func (b *BatchExecutor) Execute(ctx context.Context, operations []BatchOperation) ([]BatchResult, error) {
	results := make([]BatchResult, len(operations))

	var waitGroup sync.WaitGroup

	semaphore := make(chan struct{}, b.concurrency)

	for index, operation := range operations {
		waitGroup.Add(1)

		go func(index int, operation BatchOperation) {
			defer waitGroup.Done()

			// Acquire semaphore
			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			// Execute operation with timeout
			opCtx, cancel := context.WithTimeout(ctx, b.timeout)
			defer cancel()

			start := time.Now()
			result := b.executeOperation(opCtx, operation)
			result.Duration = time.Since(start)
			results[index] = *result

			// Call callback if provided
			if operation.Callback != nil {
				operation.Callback(result)
			}
		}(index, operation)
	}

	waitGroup.Wait()

	return results, nil
}

// validateEndpoint checks the identifiers a connect operation needs.
func validateEndpoint(network, container string) error {
	if network == "" {
		return ErrNetworkNameRequired
	}

	if container == "" {
		return ErrContainerRequired
	}

	return nil
}

// executeOperation executes a single operation.
func (b *BatchExecutor) executeOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	result := &BatchResult{
		ID: operation.ID,
	}

	networks := b.client.Networks()

	switch operation.Type {
	case "create":
		options, ok := operation.Data.(*CreateNetworkOptions[string])
		if !ok {
			result.Error = fmt.Errorf("%w: create", ErrInvalidOperationData)

			return result
		}

		data, err := networks.Create(ctx, *options)
		result.Success = err == nil
		result.Data = data
		result.Error = err

	case "remove":
		name, ok := operation.Data.(string)
		if !ok {
			result.Error = fmt.Errorf("%w: remove", ErrInvalidOperationData)

			return result
		}

		if name == "" {
			result.Error = ErrNetworkNameRequired

			return result
		}

		err := networks.Remove(ctx, name)
		result.Success = err == nil
		result.Error = err

	case "connect":
		payload, ok := operation.Data.(*ConnectPayload)
		if !ok {
			result.Error = fmt.Errorf("%w: connect", ErrInvalidOperationData)

			return result
		}

		if err := validateEndpoint(payload.Network, string(payload.Options.Container)); err != nil {
			result.Error = err

			return result
		}

		err := networks.Connect(ctx, payload.Network, payload.Options)
		result.Success = err == nil
		result.Error = err

	case "disconnect":
		payload, ok := operation.Data.(*DisconnectPayload)
		if !ok {
			result.Error = fmt.Errorf("%w: disconnect", ErrInvalidOperationData)

			return result
		}

		err := networks.Disconnect(ctx, payload.Network, payload.Options)
		result.Success = err == nil
		result.Error = err

	case "inspect":
		payload, ok := operation.Data.(*InspectPayload)
		if !ok {
			result.Error = fmt.Errorf("%w: inspect", ErrInvalidOperationData)

			return result
		}

		data, err := networks.Inspect(ctx, payload.Network, payload.Options)
		result.Success = err == nil
		result.Data = data
		result.Error = err

	default:
		result.Error = fmt.Errorf("%w: %s", ErrUnknownOperationType, operation.Type)
	}

	return result
}

// BatchBuilder helps build batch operations.
type BatchBuilder struct {
	operations []BatchOperation
}

// NewBatchBuilder creates a new batch builder.
func NewBatchBuilder() *BatchBuilder {
	return &BatchBuilder{
		operations: make([]BatchOperation, 0),
	}
}

// AddCreateNetwork adds a network creation operation.
func (b *BatchBuilder) AddCreateNetwork(id string, options *CreateNetworkOptions[string]) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:   id,
		Type: "create",
		Data: options,
	})

	return b
}

// AddRemoveNetwork adds a network removal operation.
func (b *BatchBuilder) AddRemoveNetwork(id, name string) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:   id,
		Type: "remove",
		Data: name,
	})

	return b
}

// AddConnect adds a container connect operation.
func (b *BatchBuilder) AddConnect(id, network string, options ConnectNetworkOptions[string]) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:   id,
		Type: "connect",
		Data: &ConnectPayload{Network: network, Options: options},
	})

	return b
}

// AddDisconnect adds a container disconnect operation.
func (b *BatchBuilder) AddDisconnect(id, network string, options DisconnectNetworkOptions[string]) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:   id,
		Type: "disconnect",
		Data: &DisconnectPayload{Network: network, Options: options},
	})

	return b
}

// AddInspect adds a network inspect operation.
func (b *BatchBuilder) AddInspect(id, network string, options *InspectNetworkOptions[string]) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:   id,
		Type: "inspect",
		Data: &InspectPayload{Network: network, Options: options},
	})

	return b
}

// AddOperation adds a custom operation.
func (b *BatchBuilder) AddOperation(operation BatchOperation) *BatchBuilder {
	b.operations = append(b.operations, operation)

	return b
}

// Build returns the built operations.
func (b *BatchBuilder) Build() []BatchOperation {
	return b.operations
}

// BatchTransaction represents a transactional batch of operations.
// When rollback is enabled and any operation fails, successful
// operations with a clean inverse are undone: created networks are
// removed, connected containers are disconnected.
type BatchTransaction struct {
	operations []BatchOperation
	results    []BatchResult
	executor   *BatchExecutor
	rollback   bool
}

// NewBatchTransaction creates a new batch transaction.
func NewBatchTransaction(executor *BatchExecutor) *BatchTransaction {
	return &BatchTransaction{
		executor:   executor,
		operations: make([]BatchOperation, 0),
		rollback:   true,
	}
}

// Add adds an operation to the transaction.
func (t *BatchTransaction) Add(operation BatchOperation) *BatchTransaction {
	t.operations = append(t.operations, operation)

	return t
}

// SetRollback sets whether to rollback on failure.
func (t *BatchTransaction) SetRollback(rollback bool) *BatchTransaction {
	t.rollback = rollback

	return t
}

// Execute executes the transaction.
func (t *BatchTransaction) Execute(ctx context.Context) ([]BatchResult, error) {
	results, err := t.executor.Execute(ctx, t.operations)
	t.results = results

	var failedOps []string

	for _, result := range results {
		if !result.Success {
			failedOps = append(failedOps, result.ID)
		}
	}

	if len(failedOps) > 0 && t.rollback {
		t.performRollback(ctx)

		return results, fmt.Errorf("%w, %d operations failed: %v", ErrTransactionFailed, len(failedOps), failedOps)
	}

	return results, err
}

// performRollback undoes the successful operations that have a clean
// inverse. Removals and disconnects are left alone: recreating a
// removed network would not restore its endpoints.
func (t *BatchTransaction) performRollback(ctx context.Context) {
	var rollbackOps []BatchOperation

	for i, result := range t.results {
		if !result.Success {
			continue
		}

		original := t.operations[i]

		switch original.Type {
		case "create":
			created, ok := result.Data.(*CreateNetworkResults)
			if !ok || created.ID == "" {
				continue
			}

			rollbackOps = append(rollbackOps, BatchOperation{
				ID:   "rollback_" + original.ID,
				Type: "remove",
				Data: created.ID,
			})
		case "connect":
			payload, ok := original.Data.(*ConnectPayload)
			if !ok {
				continue
			}

			rollbackOps = append(rollbackOps, BatchOperation{
				ID:   "rollback_" + original.ID,
				Type: "disconnect",
				Data: &DisconnectPayload{
					Network: payload.Network,
					Options: DisconnectNetworkOptions[string]{
						Container: payload.Options.Container,
						Force:     true,
					},
				},
			})
		}
	}

	if len(rollbackOps) > 0 {
		_, _ = t.executor.Execute(ctx, rollbackOps)
	}
}
