package syncstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klassenhub/klassenhub/internal/pkg/realtime"
)

type row struct {
	ID    int64
	Title string
}

func (r row) EntityID() int64 { return r.ID }

func ids(items []row) []int64 {
	out := make([]int64, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestListStore_InsertPrependsAndFlags(t *testing.T) {
	s := NewListStore[row]()
	s.Load([]row{{ID: 2, Title: "older"}, {ID: 1, Title: "oldest"}})

	added := s.ApplyInsert(row{ID: 3, Title: "newest"})
	assert.True(t, added)
	assert.Equal(t, []int64{3, 2, 1}, ids(s.Items()))
	assert.True(t, s.IsFresh(3))
	assert.False(t, s.IsFresh(2))
}

func TestListStore_DuplicateInsertIsIdempotent(t *testing.T) {
	s := NewListStore[row]()
	s.Load([]row{{ID: 1, Title: "a"}})

	require.True(t, s.ApplyInsert(row{ID: 2, Title: "b"}))
	// the same notification delivered twice must not duplicate the row
	assert.False(t, s.ApplyInsert(row{ID: 2, Title: "b v2"}))

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "b v2", items[0].Title)
}

func TestListStore_SelectClearsFreshness(t *testing.T) {
	s := NewListStore[row]()
	s.ApplyInsert(row{ID: 5, Title: "pushed"})
	require.True(t, s.IsFresh(5))

	got, ok := s.Select(5)
	require.True(t, ok)
	assert.Equal(t, "pushed", got.Title)
	assert.False(t, s.IsFresh(5))

	selected, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, int64(5), selected.ID)
}

func TestListStore_DeleteClearsSelection(t *testing.T) {
	s := NewListStore[row]()
	s.Load([]row{{ID: 1}, {ID: 2}})
	_, ok := s.Select(2)
	require.True(t, ok)

	assert.True(t, s.ApplyDelete(2))
	_, ok = s.Selected()
	assert.False(t, ok)
	assert.Equal(t, []int64{1}, ids(s.Items()))

	assert.False(t, s.ApplyDelete(99))
}

func TestListStore_LoadResetsFreshnessKeepsSelection(t *testing.T) {
	s := NewListStore[row]()
	s.ApplyInsert(row{ID: 1})
	_, ok := s.Select(1)
	require.True(t, ok)

	s.Load([]row{{ID: 1, Title: "reloaded"}, {ID: 2}})
	assert.False(t, s.IsFresh(1))
	selected, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, "reloaded", selected.Title)

	// selection is dropped when the row disappears from the loaded page
	s.Load([]row{{ID: 2}})
	_, ok = s.Selected()
	assert.False(t, ok)
}

func TestListStore_UpdateKeepsPositionAndFreshness(t *testing.T) {
	s := NewListStore[row]()
	s.Load([]row{{ID: 2, Title: "b"}, {ID: 1, Title: "a"}})
	s.ApplyInsert(row{ID: 3, Title: "c"})

	assert.True(t, s.ApplyUpdate(row{ID: 3, Title: "c v2"}))
	assert.Equal(t, []int64{3, 2, 1}, ids(s.Items()))
	assert.True(t, s.IsFresh(3), "an unseen row stays flagged through updates")

	assert.False(t, s.ApplyUpdate(row{ID: 42, Title: "never loaded"}))
}

func TestListStore_OnChangeFires(t *testing.T) {
	s := NewListStore[row]()
	var calls int
	s.OnChange(func() { calls++ })

	s.Load([]row{{ID: 1}})
	s.ApplyInsert(row{ID: 2})
	s.Select(2)
	s.ApplyDelete(1)

	assert.Equal(t, 4, calls)
}

type fakeCache struct {
	puts        map[string]any
	invalidated []int64
}

func (c *fakeCache) Put(_ context.Context, table string, id int64, row any) {
	if c.puts == nil {
		c.puts = make(map[string]any)
	}
	c.puts[table] = row
	_ = id
}

func (c *fakeCache) Invalidate(_ context.Context, _ string, id int64) {
	c.invalidated = append(c.invalidated, id)
}

func TestWatcher_FetchesRowsAndFeedsStore(t *testing.T) {
	broker := realtime.NewBroker()
	defer broker.Close()

	rows := map[int64]row{
		7: {ID: 7, Title: "Klassenarbeit 7"},
		8: {ID: 8, Title: "Klassenarbeit 8"},
	}
	fetch := func(_ context.Context, id int64) (row, error) {
		return rows[id], nil
	}

	store := NewListStore[row]()
	cache := &fakeCache{}
	watcher := NewWatcher("exams", store, fetch, cache)

	sub := broker.Subscribe("exams", 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		watcher.Run(context.Background(), sub)
	}()

	broker.Publish(realtime.ChangeEvent{Table: "exams", Op: realtime.OpInsert, ID: 7, TeacherID: 1})
	broker.Publish(realtime.ChangeEvent{Table: "exams", Op: realtime.OpInsert, ID: 8, TeacherID: 1})
	broker.Publish(realtime.ChangeEvent{Table: "exams", Op: realtime.OpDelete, ID: 7, TeacherID: 1})

	sub.Close()
	<-done

	assert.Equal(t, []int64{8}, ids(store.Items()))
	assert.True(t, store.IsFresh(8))
	assert.Equal(t, []int64{7}, cache.invalidated)
	require.Contains(t, cache.puts, "exams")
}

type emitted struct {
	op  string
	id  int64
	row any
}

func TestWatcher_UpdateRefetchesAndEmitsCurrentRow(t *testing.T) {
	broker := realtime.NewBroker()
	defer broker.Close()

	// the row changes in the database between the two events
	versions := []row{{ID: 7, Title: "v1"}, {ID: 7, Title: "v2"}}
	fetches := 0
	fetch := func(_ context.Context, id int64) (row, error) {
		r := versions[fetches]
		fetches++
		return r, nil
	}

	store := NewListStore[row]()
	cache := &fakeCache{}
	watcher := NewWatcher("exams", store, fetch, cache)

	var events []emitted
	watcher.OnEvent(func(op string, id int64, r any) {
		events = append(events, emitted{op: op, id: id, row: r})
	})

	sub := broker.Subscribe("exams", 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		watcher.Run(context.Background(), sub)
	}()

	broker.Publish(realtime.ChangeEvent{Table: "exams", Op: realtime.OpInsert, ID: 7, TeacherID: 1})
	broker.Publish(realtime.ChangeEvent{Table: "exams", Op: realtime.OpUpdate, ID: 7, TeacherID: 1})
	broker.Publish(realtime.ChangeEvent{Table: "exams", Op: realtime.OpDelete, ID: 7, TeacherID: 1})

	sub.Close()
	<-done

	// every insert and update hit the database, nothing was served stale
	assert.Equal(t, 2, fetches)

	require.Len(t, events, 3)
	assert.Equal(t, emitted{op: realtime.OpInsert, id: 7, row: row{ID: 7, Title: "v1"}}, events[0])
	assert.Equal(t, emitted{op: realtime.OpUpdate, id: 7, row: row{ID: 7, Title: "v2"}}, events[1])
	assert.Equal(t, emitted{op: realtime.OpDelete, id: 7, row: nil}, events[2])

	// the cache holds the latest fetched version until the delete drops it
	assert.Equal(t, row{ID: 7, Title: "v2"}, cache.puts["exams"])
	assert.Equal(t, []int64{7}, cache.invalidated)
	assert.Empty(t, store.Items())
}
