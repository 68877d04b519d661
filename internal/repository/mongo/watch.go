// internal/repository/mongo/watch.go
package mongo

import (
	"alcyxob/coach-sync/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// watchFullQuery implements the live-subscription contract on top of a
// MongoDB change stream: the first emission is the current result set, and
// every subsequent change to the collection triggers a full re-query whose
// result is emitted as one batch. Emissions are entire result sets, never
// diffs.
//
// The change stream is opened on the whole collection rather than filtered
// by a pipeline: delete events carry no fullDocument, so a field-matched
// pipeline would miss removals. Scoping happens in the re-query instead; a
// change to an unrelated document costs one redundant re-query and emits
// an identical batch, which downstream merge steps absorb idempotently.
//
// A store failure is delivered as a single Batch with Err set and the
// channel is closed; there is no automatic reconnect. Cancelling ctx stops
// the stream and closes the channel without a failure emission.
func watchFullQuery[T any](
	ctx context.Context,
	coll *mongo.Collection,
	list func(context.Context) ([]T, error),
) (<-chan repository.Batch[T], error) {
	stream, err := coll.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, err
	}

	out := make(chan repository.Batch[T], 1)
	go func() {
		defer close(out)
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			defer cancel()
			_ = stream.Close(closeCtx)
		}()

		if !emitCurrent(ctx, out, list) {
			return
		}
		for stream.Next(ctx) {
			if !emitCurrent(ctx, out, list) {
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			select {
			case out <- repository.Batch[T]{Err: err}:
			case <-ctx.Done():
			}
		}
	}()
	return out, nil
}

// emitCurrent re-runs the query and sends the full result set. Returns
// false when the stream must stop (terminal error or cancelled context).
func emitCurrent[T any](
	ctx context.Context,
	out chan<- repository.Batch[T],
	list func(context.Context) ([]T, error),
) bool {
	items, err := list(ctx)
	if err != nil {
		if ctx.Err() == nil {
			select {
			case out <- repository.Batch[T]{Err: err}:
			case <-ctx.Done():
			}
		}
		return false
	}
	select {
	case out <- repository.Batch[T]{Items: items}:
		return true
	case <-ctx.Done():
		return false
	}
}
