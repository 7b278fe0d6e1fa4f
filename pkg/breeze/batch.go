package breeze

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Static errors for err113 compliance.
var (
	ErrUnsupportedOperationType = errors.New("unsupported operation type")
)

const (
	defaultBatchConcurrency = 5
	defaultBatchTimeout     = 30 * time.Second
)

// OperationType names a batch operation.
type OperationType string

// Supported batch operation types.
const (
	OperationCreate OperationType = "create"
	OperationRead   OperationType = "read"
	OperationUpdate OperationType = "update"
	OperationDelete OperationType = "delete"
)

// BatchOperation is a single operation in a batch. Read and delete use Key,
// falling back to Item.Key() when Key is empty. Delete sends Query as given.
type BatchOperation[T KeyedItem] struct {
	ID       string
	Type     OperationType
	Item     T
	Key      string
	Query    QueryItems
	Callback func(result *BatchResult[T])
}

// BatchResult is the outcome of one batch operation.
type BatchResult[T KeyedItem] struct {
	ID       string
	Success  bool
	Item     T
	Error    error
	Duration time.Duration
}

// BatchExecutor runs batches of operations against one client.
type BatchExecutor[T KeyedItem] struct {
	client      *Client[T]
	token       string
	concurrency int
	timeout     time.Duration
}

// NewBatchExecutor creates a batch executor. token is sent with every
// operation; concurrency <= 0 selects a default.
func NewBatchExecutor[T KeyedItem](client *Client[T], token string, concurrency int) *BatchExecutor[T] {
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}

	return &BatchExecutor[T]{
		client:      client,
		token:       token,
		concurrency: concurrency,
		timeout:     defaultBatchTimeout,
	}
}

// SetTimeout sets the per-operation timeout.
func (b *BatchExecutor[T]) SetTimeout(timeout time.Duration) {
	b.timeout = timeout
}

// Execute runs operations concurrently. Results are returned in input order;
// a failed operation never cancels the others. The returned error is non-nil
// only when ctx ends before the batch finishes.
func (b *BatchExecutor[T]) Execute(ctx context.Context, operations []BatchOperation[T]) ([]BatchResult[T], error) {
	results := make([]BatchResult[T], len(operations))

	var group errgroup.Group

	group.SetLimit(b.concurrency)

	for index, operation := range operations {
		index, operation := index, operation

		group.Go(func() error {
			opCtx, cancel := context.WithTimeout(ctx, b.timeout)
			defer cancel()

			start := time.Now()
			result := b.executeOperation(opCtx, operation)
			result.Duration = time.Since(start)
			results[index] = *result

			if operation.Callback != nil {
				operation.Callback(result)
			}

			return nil
		})
	}

	_ = group.Wait()

	err := ctx.Err()
	if err != nil {
		return results, fmt.Errorf("batch interrupted: %w", err)
	}

	return results, nil
}

func (b *BatchExecutor[T]) executeOperation(ctx context.Context, operation BatchOperation[T]) *BatchResult[T] {
	result := &BatchResult[T]{ID: operation.ID}

	key := operation.Key
	if key == "" && (operation.Type == OperationRead || operation.Type == OperationDelete) {
		key = operation.Item.Key()
	}

	switch operation.Type {
	case OperationCreate:
		result.Item, result.Error = b.client.Create(ctx, b.token, operation.Item)
	case OperationRead:
		result.Item, result.Error = b.client.Read(ctx, b.token, key)
	case OperationUpdate:
		result.Item, result.Error = b.client.Update(ctx, b.token, operation.Item)
	case OperationDelete:
		result.Error = b.client.DeleteWithQuery(ctx, b.token, key, operation.Query)
	default:
		result.Error = fmt.Errorf("%w: %s", ErrUnsupportedOperationType, operation.Type)
	}

	result.Success = result.Error == nil

	return result
}
