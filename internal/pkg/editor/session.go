// Package editor implements the server side of the exam editor: one
// session per open exam, holding the working buffer and switching it
// between the exam text and its correction without losing either.
package editor

import (
	"context"
	"sync"

	"github.com/klassenhub/klassenhub/internal/pkg/apperrors"
)

// Mode is what the working buffer currently represents.
type Mode string

const (
	ModeEdit       Mode = "edit"
	ModeCorrection Mode = "correction"
)

// ExamStore is the slice of exam persistence a session needs.
type ExamStore interface {
	FetchExamContent(ctx context.Context, examID, teacherID int64) (string, error)
	SaveExamContent(ctx context.Context, examID, teacherID int64, content string) error
}

// CorrectionStore is the slice of correction persistence a session needs.
// Fetch reports found=false when the exam has no correction yet; Save
// creates the correction on first save and updates it afterwards.
type CorrectionStore interface {
	FetchCorrection(ctx context.Context, examID, teacherID int64) (content string, id int64, found bool, err error)
	SaveCorrection(ctx context.Context, examID, teacherID int64, content string) (id int64, err error)
}

// Session is the editing state of one open exam. Toggling modes stashes
// the working buffer into the slot of the outgoing mode and restores the
// other slot, so unsaved edits in either mode survive any number of
// switches. The correction is fetched at most once per session.
type Session struct {
	examID    int64
	teacherID int64

	exams       ExamStore
	corrections CorrectionStore

	mu               sync.Mutex
	mode             Mode
	buffer           string
	editSlot         string
	correctionSlot   string
	correctionID     *int64
	correctionLoaded bool
	dirty            bool
}

// newSession opens a session in edit mode with the exam text loaded.
func newSession(ctx context.Context, examID, teacherID int64, exams ExamStore, corrections CorrectionStore) (*Session, error) {
	content, err := exams.FetchExamContent(ctx, examID, teacherID)
	if err != nil {
		return nil, err
	}
	return &Session{
		examID:      examID,
		teacherID:   teacherID,
		exams:       exams,
		corrections: corrections,
		mode:        ModeEdit,
		buffer:      content,
	}, nil
}

// Mode returns the current editing mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Buffer returns the current working text.
func (s *Session) Buffer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer
}

// CorrectionID returns the id of the correction once known, either from
// the first fetch or from the first save in correction mode.
func (s *Session) CorrectionID() *int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.correctionID
}

// Dirty reports whether the session holds changes not yet saved.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// SetBuffer replaces the working text with the client's latest state.
func (s *Session) SetBuffer(content string) {
	s.mu.Lock()
	if content != s.buffer {
		s.buffer = content
		s.dirty = true
	}
	s.mu.Unlock()
}

// Toggle switches between edit and correction mode. The outgoing buffer is
// stashed, the incoming slot restored. On the first switch into correction
// mode the stored correction is fetched; a missing correction yields an
// empty buffer to start from.
func (s *Session) Toggle(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.mode {
	case ModeEdit:
		s.editSlot = s.buffer
		if !s.correctionLoaded {
			content, id, found, err := s.corrections.FetchCorrection(ctx, s.examID, s.teacherID)
			if err != nil {
				return err
			}
			s.correctionLoaded = true
			if found {
				s.correctionSlot = content
				s.correctionID = &id
			}
		}
		s.buffer = s.correctionSlot
		s.mode = ModeCorrection

	case ModeCorrection:
		s.correctionSlot = s.buffer
		s.buffer = s.editSlot
		s.mode = ModeEdit
	}
	return nil
}

// Save persists the working buffer: exam content in edit mode, the
// correction (created on first save) in correction mode.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.mode {
	case ModeEdit:
		s.editSlot = s.buffer
		if err := s.exams.SaveExamContent(ctx, s.examID, s.teacherID, s.buffer); err != nil {
			return err
		}
		s.dirty = false
		return nil

	case ModeCorrection:
		s.correctionSlot = s.buffer
		id, err := s.corrections.SaveCorrection(ctx, s.examID, s.teacherID, s.buffer)
		if err != nil {
			return err
		}
		s.correctionID = &id
		s.dirty = false
		return nil
	}
	return apperrors.NewValidationError("unknown editor mode")
}
