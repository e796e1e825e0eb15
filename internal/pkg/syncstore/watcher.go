package syncstore

import (
	"context"
	"time"

	"github.com/klassenhub/klassenhub/internal/pkg/logger"
	"github.com/klassenhub/klassenhub/internal/pkg/realtime"
)

// fetchTimeout bounds the row fetch triggered by one change event.
const fetchTimeout = 5 * time.Second

// FetchFunc loads the full row for an id. Change notifications carry only
// the row id, so inserts and updates trigger one fetch each.
type FetchFunc[T Entity] func(ctx context.Context, id int64) (T, error)

// RowCache is the side channel fetched rows are written to. Satisfied by
// rowcache.Cache; a nil cache disables the side channel.
type RowCache interface {
	Put(ctx context.Context, table string, id int64, row any)
	Invalidate(ctx context.Context, table string, id int64)
}

// Watcher feeds one subscription's change events into a ListStore.
type Watcher[T Entity] struct {
	store   *ListStore[T]
	fetch   FetchFunc[T]
	cache   RowCache
	table   string
	onEvent func(op string, id int64, row any)
}

// NewWatcher wires a store to a fetch function for one table.
func NewWatcher[T Entity](table string, store *ListStore[T], fetch FetchFunc[T], cache RowCache) *Watcher[T] {
	return &Watcher[T]{store: store, fetch: fetch, cache: cache, table: table}
}

// OnEvent registers a callback invoked after each applied event, with the
// freshly fetched row for inserts and updates and a nil row for deletes.
// Must be set before Run.
func (w *Watcher[T]) OnEvent(fn func(op string, id int64, row any)) {
	w.onEvent = fn
}

// Run consumes the subscription until it closes or the context ends.
// Inserts and updates fetch the full row, merge it into the store and copy
// it into the row cache; deletes drop the row from both.
func (w *Watcher[T]) Run(ctx context.Context, sub *realtime.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			w.apply(ctx, event)
		}
	}
}

func (w *Watcher[T]) apply(ctx context.Context, event realtime.ChangeEvent) {
	switch event.Op {
	case realtime.OpInsert, realtime.OpUpdate:
		fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
		row, err := w.fetch(fetchCtx, event.ID)
		cancel()
		if err != nil {
			logger.Warn().Err(err).Str("table", w.table).Int64("id", event.ID).Msg("Failed to fetch row for change event")
			return
		}
		if w.cache != nil {
			w.cache.Put(ctx, w.table, event.ID, row)
		}
		if event.Op == realtime.OpInsert {
			w.store.ApplyInsert(row)
		} else {
			w.store.ApplyUpdate(row)
		}
		if w.onEvent != nil {
			w.onEvent(event.Op, event.ID, row)
		}
	case realtime.OpDelete:
		if w.cache != nil {
			w.cache.Invalidate(ctx, w.table, event.ID)
		}
		w.store.ApplyDelete(event.ID)
		if w.onEvent != nil {
			w.onEvent(event.Op, event.ID, nil)
		}
	default:
		logger.Warn().Str("op", event.Op).Str("table", w.table).Msg("Unknown change operation")
	}
}
