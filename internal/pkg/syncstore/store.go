// Package syncstore keeps an ordered, observable in-memory list of rows in
// sync with change events. It backs server-side views that must reflect
// inserts pushed over the realtime stream: new rows are prepended and
// flagged until selected, duplicate notifications collapse into one entry.
package syncstore

import (
	"sync"
)

// Entity is any row with a numeric primary key.
type Entity interface {
	EntityID() int64
}

// ListStore holds rows newest-first plus per-row freshness and a single
// selection. All methods are safe for concurrent use.
type ListStore[T Entity] struct {
	mu        sync.Mutex
	items     []T
	fresh     map[int64]bool
	selected  int64
	hasSelect bool
	listeners []func()
}

// NewListStore creates an empty store.
func NewListStore[T Entity]() *ListStore[T] {
	return &ListStore[T]{fresh: make(map[int64]bool)}
}

// OnChange registers a callback invoked after every mutation. Callbacks run
// outside the store lock.
func (s *ListStore[T]) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *ListStore[T]) notify() {
	s.mu.Lock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Load replaces the whole list, typically with a fetched page. Freshness is
// reset; the selection survives if the selected row is still present.
func (s *ListStore[T]) Load(items []T) {
	s.mu.Lock()
	s.items = make([]T, len(items))
	copy(s.items, items)
	s.fresh = make(map[int64]bool)

	if s.hasSelect {
		found := false
		for _, item := range s.items {
			if item.EntityID() == s.selected {
				found = true
				break
			}
		}
		if !found {
			s.hasSelect = false
			s.selected = 0
		}
	}
	s.mu.Unlock()

	s.notify()
}

// ApplyInsert merges a pushed row. A row whose id is already present
// replaces the existing entry in place, so repeated notifications for the
// same insert are idempotent. New rows are prepended and marked fresh.
// Returns true when the row was actually new.
func (s *ListStore[T]) ApplyInsert(item T) bool {
	s.mu.Lock()
	id := item.EntityID()
	for i, existing := range s.items {
		if existing.EntityID() == id {
			s.items[i] = item
			s.mu.Unlock()
			s.notify()
			return false
		}
	}

	s.items = append([]T{item}, s.items...)
	s.fresh[id] = true
	s.mu.Unlock()

	s.notify()
	return true
}

// ApplyUpdate replaces the row with the same id, if present. Rows the store
// never loaded are ignored. Freshness is untouched: an update to a row the
// user has not looked at yet keeps it flagged.
func (s *ListStore[T]) ApplyUpdate(item T) bool {
	s.mu.Lock()
	id := item.EntityID()
	for i, existing := range s.items {
		if existing.EntityID() == id {
			s.items[i] = item
			s.mu.Unlock()
			s.notify()
			return true
		}
	}
	s.mu.Unlock()
	return false
}

// ApplyDelete removes the row. A deleted row loses its freshness flag and,
// when selected, the selection.
func (s *ListStore[T]) ApplyDelete(id int64) bool {
	s.mu.Lock()
	index := -1
	for i, existing := range s.items {
		if existing.EntityID() == id {
			index = i
			break
		}
	}
	if index < 0 {
		s.mu.Unlock()
		return false
	}

	s.items = append(s.items[:index], s.items[index+1:]...)
	delete(s.fresh, id)
	if s.hasSelect && s.selected == id {
		s.hasSelect = false
		s.selected = 0
	}
	s.mu.Unlock()

	s.notify()
	return true
}

// Select marks the row as the current selection and clears its freshness
// flag. Returns the row and whether it exists.
func (s *ListStore[T]) Select(id int64) (T, bool) {
	s.mu.Lock()
	for _, item := range s.items {
		if item.EntityID() == id {
			s.selected = id
			s.hasSelect = true
			delete(s.fresh, id)
			s.mu.Unlock()
			s.notify()
			return item, true
		}
	}
	s.mu.Unlock()

	var zero T
	return zero, false
}

// Selected returns the currently selected row, if any.
func (s *ListStore[T]) Selected() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasSelect {
		for _, item := range s.items {
			if item.EntityID() == s.selected {
				return item, true
			}
		}
	}
	var zero T
	return zero, false
}

// IsFresh reports whether the row was pushed since the last Load and has
// not been selected yet.
func (s *ListStore[T]) IsFresh(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fresh[id]
}

// Items returns a snapshot of the list, newest first.
func (s *ListStore[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of rows held.
func (s *ListStore[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
