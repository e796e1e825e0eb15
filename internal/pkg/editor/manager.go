package editor

import (
	"context"
	"sync"
)

type sessionKey struct {
	examID    int64
	teacherID int64
}

// Manager holds at most one session per exam and owner. Sessions live until
// the exam is deleted or the manager is cleared. Keying by owner too means a
// cached buffer is never handed to a teacher who merely guessed the exam id;
// they go through newSession, whose owner-scoped fetch rejects them.
type Manager struct {
	exams       ExamStore
	corrections CorrectionStore

	mu       sync.Mutex
	sessions map[sessionKey]*Session
}

// NewManager creates a session manager backed by the given stores.
func NewManager(exams ExamStore, corrections CorrectionStore) *Manager {
	return &Manager{
		exams:       exams,
		corrections: corrections,
		sessions:    make(map[sessionKey]*Session),
	}
}

// Session returns the open session for the exam, creating one in edit mode
// on first access.
func (m *Manager) Session(ctx context.Context, examID, teacherID int64) (*Session, error) {
	key := sessionKey{examID: examID, teacherID: teacherID}

	m.mu.Lock()
	if session, ok := m.sessions[key]; ok {
		m.mu.Unlock()
		return session, nil
	}
	m.mu.Unlock()

	// fetch outside the lock, then re-check; losing the race just drops
	// one freshly opened duplicate
	session, err := newSession(ctx, examID, teacherID, m.exams, m.corrections)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[key]; ok {
		return existing, nil
	}
	m.sessions[key] = session
	return session, nil
}

// Close drops the teacher's session for the exam, if any. Called when the
// exam is deleted so a stale buffer cannot resurrect its content.
func (m *Manager) Close(examID, teacherID int64) {
	m.mu.Lock()
	delete(m.sessions, sessionKey{examID: examID, teacherID: teacherID})
	m.mu.Unlock()
}
