package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveEvent(t *testing.T, sub *Subscription) ChangeEvent {
	t.Helper()
	select {
	case event, ok := <-sub.Events():
		require.True(t, ok, "subscription closed unexpectedly")
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return ChangeEvent{}
	}
}

func assertClosed(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case _, ok := <-sub.Events():
		assert.False(t, ok, "expected closed subscription")
	case <-time.After(time.Second):
		t.Fatal("subscription channel not closed")
	}
}

func TestBroker_PublishRoutesToOwner(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	sub := b.Subscribe("exams", 1)
	other := b.Subscribe("exams", 2)

	b.Publish(ChangeEvent{Table: "exams", Op: OpInsert, ID: 10, TeacherID: 1})

	event := receiveEvent(t, sub)
	assert.Equal(t, int64(10), event.ID)
	assert.Equal(t, OpInsert, event.Op)

	select {
	case event := <-other.Events():
		t.Fatalf("event leaked to another teacher: %+v", event)
	default:
	}
}

func TestBroker_PublishIgnoresUnsubscribedTable(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	sub := b.Subscribe("exams", 1)
	b.Publish(ChangeEvent{Table: "pupils", Op: OpInsert, ID: 5, TeacherID: 1})

	select {
	case event := <-sub.Events():
		t.Fatalf("unexpected event: %+v", event)
	default:
	}
}

func TestBroker_ResubscribeReplacesPrevious(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	first := b.Subscribe("exams", 1)
	second := b.Subscribe("exams", 1)

	// the old stream ends, the new one receives
	assertClosed(t, first)

	b.Publish(ChangeEvent{Table: "exams", Op: OpUpdate, ID: 3, TeacherID: 1})
	event := receiveEvent(t, second)
	assert.Equal(t, int64(3), event.ID)
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	sub := b.Subscribe("pupils", 1)
	sub.Close()
	sub.Close()
	assertClosed(t, sub)

	// publishing after close must not panic
	b.Publish(ChangeEvent{Table: "pupils", Op: OpDelete, ID: 1, TeacherID: 1})
}

func TestSubscription_CloseAfterReplacementKeepsNewStream(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	first := b.Subscribe("exams", 1)
	second := b.Subscribe("exams", 1)

	// closing the stale handle must not tear down the replacement
	first.Close()

	b.Publish(ChangeEvent{Table: "exams", Op: OpInsert, ID: 7, TeacherID: 1})
	event := receiveEvent(t, second)
	assert.Equal(t, int64(7), event.ID)
}

func TestBroker_PublishDoesNotBlockOnFullBuffer(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	b.Subscribe("exams", 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			b.Publish(ChangeEvent{Table: "exams", Op: OpInsert, ID: int64(i), TeacherID: 1})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a non-draining subscriber")
	}
}
