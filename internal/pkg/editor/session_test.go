package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExamStore struct {
	content string
	saved   []string
	fetches int
}

func (f *fakeExamStore) FetchExamContent(_ context.Context, _, _ int64) (string, error) {
	f.fetches++
	return f.content, nil
}

func (f *fakeExamStore) SaveExamContent(_ context.Context, _, _ int64, content string) error {
	f.content = content
	f.saved = append(f.saved, content)
	return nil
}

type fakeCorrectionStore struct {
	content string
	id      int64
	exists  bool
	fetches int
	saves   int
}

func (f *fakeCorrectionStore) FetchCorrection(_ context.Context, _, _ int64) (string, int64, bool, error) {
	f.fetches++
	if !f.exists {
		return "", 0, false, nil
	}
	return f.content, f.id, true, nil
}

func (f *fakeCorrectionStore) SaveCorrection(_ context.Context, _, _ int64, content string) (int64, error) {
	f.saves++
	f.content = content
	f.exists = true
	if f.id == 0 {
		f.id = 100
	}
	return f.id, nil
}

func open(t *testing.T, exams *fakeExamStore, corrections *fakeCorrectionStore) *Session {
	t.Helper()
	m := NewManager(exams, corrections)
	s, err := m.Session(context.Background(), 1, 1)
	require.NoError(t, err)
	return s
}

func TestSession_OpensInEditModeWithExamContent(t *testing.T) {
	exams := &fakeExamStore{content: "# Klassenarbeit\n\nAufgabe 1."}
	s := open(t, exams, &fakeCorrectionStore{})

	assert.Equal(t, ModeEdit, s.Mode())
	assert.Equal(t, "# Klassenarbeit\n\nAufgabe 1.", s.Buffer())
}

func TestSession_ToggleRoundTripPreservesBothBuffers(t *testing.T) {
	exams := &fakeExamStore{content: "exam text"}
	corrections := &fakeCorrectionStore{exists: true, content: "correction text", id: 9}
	s := open(t, exams, corrections)

	s.SetBuffer("exam text edited")
	require.NoError(t, s.Toggle(context.Background()))
	assert.Equal(t, ModeCorrection, s.Mode())
	assert.Equal(t, "correction text", s.Buffer())

	s.SetBuffer("correction text edited")
	require.NoError(t, s.Toggle(context.Background()))
	assert.Equal(t, ModeEdit, s.Mode())
	assert.Equal(t, "exam text edited", s.Buffer())

	// nothing was persisted by toggling
	require.NoError(t, s.Toggle(context.Background()))
	assert.Equal(t, "correction text edited", s.Buffer())
	assert.Empty(t, exams.saved)
	assert.Zero(t, corrections.saves)
}

func TestSession_CorrectionFetchedOnce(t *testing.T) {
	corrections := &fakeCorrectionStore{exists: true, content: "v1", id: 9}
	s := open(t, &fakeExamStore{}, corrections)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Toggle(context.Background()))
	}
	assert.Equal(t, 1, corrections.fetches)

	require.NotNil(t, s.CorrectionID())
	assert.Equal(t, int64(9), *s.CorrectionID())
}

func TestSession_MissingCorrectionYieldsEmptyBuffer(t *testing.T) {
	s := open(t, &fakeExamStore{content: "exam"}, &fakeCorrectionStore{exists: false})

	require.NoError(t, s.Toggle(context.Background()))
	assert.Equal(t, ModeCorrection, s.Mode())
	assert.Equal(t, "", s.Buffer())
	assert.Nil(t, s.CorrectionID())
}

func TestSession_SaveInEditModeWritesExam(t *testing.T) {
	exams := &fakeExamStore{content: "old"}
	s := open(t, exams, &fakeCorrectionStore{})

	assert.False(t, s.Dirty())
	s.SetBuffer("new exam text")
	assert.True(t, s.Dirty())

	require.NoError(t, s.Save(context.Background()))
	assert.Equal(t, []string{"new exam text"}, exams.saved)
	assert.False(t, s.Dirty())
}

func TestSession_SaveInCorrectionModeCreatesThenUpdates(t *testing.T) {
	corrections := &fakeCorrectionStore{exists: false}
	s := open(t, &fakeExamStore{}, corrections)

	require.NoError(t, s.Toggle(context.Background()))
	s.SetBuffer("first draft")
	require.NoError(t, s.Save(context.Background()))
	require.NotNil(t, s.CorrectionID())
	assert.Equal(t, int64(100), *s.CorrectionID())

	s.SetBuffer("second draft")
	require.NoError(t, s.Save(context.Background()))
	assert.Equal(t, 2, corrections.saves)
	assert.Equal(t, "second draft", corrections.content)
}

func TestManager_SessionReusedAndClosed(t *testing.T) {
	exams := &fakeExamStore{content: "exam"}
	m := NewManager(exams, &fakeCorrectionStore{})

	first, err := m.Session(context.Background(), 1, 1)
	require.NoError(t, err)
	second, err := m.Session(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, exams.fetches)

	m.Close(1, 1)
	third, err := m.Session(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

// ownedExamStore only serves content to the owning teacher, like the real
// repository-backed store.
type ownedExamStore struct {
	fakeExamStore
	ownerID int64
}

func (f *ownedExamStore) FetchExamContent(ctx context.Context, examID, teacherID int64) (string, error) {
	if teacherID != f.ownerID {
		return "", errExamNotFound
	}
	return f.fakeExamStore.FetchExamContent(ctx, examID, teacherID)
}

var errExamNotFound = errors.New("exam not found")

func TestManager_SessionsAreScopedToTeacher(t *testing.T) {
	exams := &ownedExamStore{fakeExamStore: fakeExamStore{content: "geheim"}, ownerID: 1}
	m := NewManager(exams, &fakeCorrectionStore{})

	owned, err := m.Session(context.Background(), 1, 1)
	require.NoError(t, err)
	owned.SetBuffer("unsaved draft")

	// another teacher asking for the same exam must not receive the
	// owner's buffer; the owner-scoped fetch rejects them
	_, err = m.Session(context.Background(), 1, 2)
	assert.ErrorIs(t, err, errExamNotFound)

	// and closing as the wrong teacher does not evict the owner's session
	m.Close(1, 2)
	again, err := m.Session(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Same(t, owned, again)
	assert.Equal(t, "unsaved draft", again.Buffer())
}
