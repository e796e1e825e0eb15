// Package realtime distributes row change events. Postgres triggers emit a
// NOTIFY per insert/update/delete, the Listener turns notifications into
// ChangeEvents and the Broker routes them to the owning teacher's
// subscriptions, which back both WebSocket connections and in-process
// stores.
package realtime

import (
	"sync"

	"github.com/klassenhub/klassenhub/internal/pkg/logger"
)

// Operations carried by change events.
const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// ChangeEvent describes one row change on a watched table.
type ChangeEvent struct {
	Table     string `json:"table"`
	Op        string `json:"op"`
	ID        int64  `json:"id"`
	TeacherID int64  `json:"teacherId"`
}

type subKey struct {
	table     string
	teacherID int64
}

// Subscription is a handle on one (table, teacher) event stream. Events are
// delivered on Events until Close is called or the subscription is replaced.
type Subscription struct {
	key    subKey
	events chan ChangeEvent
	closed bool
	broker *Broker
}

// Events returns the channel events are delivered on. The channel is closed
// when the subscription ends.
func (s *Subscription) Events() <-chan ChangeEvent {
	return s.events
}

// Close ends the subscription. Safe to call more than once and safe to call
// after the subscription was replaced by a newer one.
func (s *Subscription) Close() {
	s.broker.closeSub(s)
}

// Broker holds at most one live subscription per (table, teacher) pair.
type Broker struct {
	mu   sync.RWMutex
	subs map[subKey]*Subscription
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[subKey]*Subscription)}
}

// Subscribe opens a subscription for one table scoped to one teacher. A
// previous subscription for the same pair is closed and replaced, so a
// resubscribing client never ends up with two streams for the same table.
func (b *Broker) Subscribe(table string, teacherID int64) *Subscription {
	key := subKey{table: table, teacherID: teacherID}
	sub := &Subscription{
		key:    key,
		events: make(chan ChangeEvent, 16),
		broker: b,
	}

	b.mu.Lock()
	if prev := b.subs[key]; prev != nil && !prev.closed {
		prev.closed = true
		close(prev.events)
		logger.Debug().Str("table", table).Int64("teacherID", teacherID).Msg("Replaced existing subscription")
	}
	b.subs[key] = sub
	b.mu.Unlock()

	return sub
}

// Publish delivers an event to the matching subscription, if any. Delivery
// never blocks: a subscriber that stopped draining loses events rather than
// stalling the listener.
func (b *Broker) Publish(event ChangeEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	sub := b.subs[subKey{table: event.Table, teacherID: event.TeacherID}]
	if sub == nil || sub.closed {
		return
	}
	select {
	case sub.events <- event:
	default:
		logger.Warn().
			Str("table", event.Table).
			Int64("teacherID", event.TeacherID).
			Msg("Subscriber not draining, event dropped")
	}
}

// Close shuts down all subscriptions.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for key, sub := range b.subs {
		if !sub.closed {
			sub.closed = true
			close(sub.events)
		}
		delete(b.subs, key)
	}
}

func (b *Broker) closeSub(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[s.key] == s {
		delete(b.subs, s.key)
	}
	if !s.closed {
		s.closed = true
		close(s.events)
	}
}
