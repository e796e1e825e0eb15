package services

import (
	"context"

	"github.com/klassenhub/klassenhub/internal/app/models"
	"github.com/klassenhub/klassenhub/internal/app/repositories"
	"github.com/klassenhub/klassenhub/internal/pkg/editor"
)

// examEditorStore adapts the exam repository to the editor's ExamStore.
type examEditorStore struct {
	repo *repositories.ExamRepository
}

// NewExamEditorStore wraps an exam repository for use by editor sessions.
func NewExamEditorStore(repo *repositories.ExamRepository) editor.ExamStore {
	return &examEditorStore{repo: repo}
}

func (s *examEditorStore) FetchExamContent(ctx context.Context, examID, teacherID int64) (string, error) {
	exam, err := s.repo.GetExamByID(ctx, teacherID, examID)
	if err != nil {
		return "", err
	}
	return exam.Content, nil
}

func (s *examEditorStore) SaveExamContent(ctx context.Context, examID, teacherID int64, content string) error {
	_, err := s.repo.UpdateExam(ctx, teacherID, examID, nil, &content)
	return err
}

// correctionEditorStore adapts the correction repository to the editor's
// CorrectionStore. Save is an upsert: create on first save, update after.
type correctionEditorStore struct {
	repo *repositories.CorrectionRepository
}

// NewCorrectionEditorStore wraps a correction repository for editor sessions.
func NewCorrectionEditorStore(repo *repositories.CorrectionRepository) editor.CorrectionStore {
	return &correctionEditorStore{repo: repo}
}

func (s *correctionEditorStore) FetchCorrection(ctx context.Context, examID, teacherID int64) (string, int64, bool, error) {
	correction, err := s.repo.GetCorrectionByExam(ctx, teacherID, examID)
	if err != nil {
		return "", 0, false, err
	}
	if correction == nil {
		return "", 0, false, nil
	}
	return correction.Content, correction.ID, true, nil
}

func (s *correctionEditorStore) SaveCorrection(ctx context.Context, examID, teacherID int64, content string) (int64, error) {
	existing, err := s.repo.GetCorrectionByExam(ctx, teacherID, examID)
	if err != nil {
		return 0, err
	}
	if existing == nil {
		created, err := s.repo.CreateCorrection(ctx, &models.Correction{
			ExamID:    examID,
			TeacherID: teacherID,
			Content:   content,
		})
		if err != nil {
			return 0, err
		}
		return created.ID, nil
	}

	updated, err := s.repo.UpdateCorrection(ctx, teacherID, existing.ID, content)
	if err != nil {
		return 0, err
	}
	return updated.ID, nil
}
