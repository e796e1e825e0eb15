package services

import (
	"context"
	"fmt"

	"github.com/klassenhub/klassenhub/internal/app/models"
	"github.com/klassenhub/klassenhub/internal/app/models/dto"
	"github.com/klassenhub/klassenhub/internal/app/repositories"
	"github.com/klassenhub/klassenhub/internal/pkg/apperrors"
	"github.com/klassenhub/klassenhub/internal/pkg/docconv"
	"github.com/klassenhub/klassenhub/internal/pkg/logger"
)

// CorrectionService defines the interface for correction operations
type CorrectionService interface {
	// GetCorrectionByExam returns the exam's correction, or nil (not an
	// error) when none exists yet.
	GetCorrectionByExam(ctx context.Context, teacherID, examID int64) (*dto.CorrectionResponse, error)
	SaveCorrection(ctx context.Context, teacherID, examID int64, req *dto.SaveCorrectionRequest) (*dto.CorrectionResponse, error)
	DownloadCorrection(ctx context.Context, teacherID, examID int64) (filename string, data []byte, err error)
}

// correctionServiceImpl implements CorrectionService
type correctionServiceImpl struct {
	correctionRepo *repositories.CorrectionRepository
	examRepo       *repositories.ExamRepository
}

// NewCorrectionService creates a new CorrectionService
func NewCorrectionService(
	correctionRepo *repositories.CorrectionRepository,
	examRepo *repositories.ExamRepository,
) CorrectionService {
	return &correctionServiceImpl{
		correctionRepo: correctionRepo,
		examRepo:       examRepo,
	}
}

// GetCorrectionByExam looks up the correction of an exam. A missing
// correction is an expected state, not a failure.
func (s *correctionServiceImpl) GetCorrectionByExam(ctx context.Context, teacherID, examID int64) (*dto.CorrectionResponse, error) {
	// ensure the exam exists and belongs to the caller
	if _, err := s.examRepo.GetExamByID(ctx, teacherID, examID); err != nil {
		return nil, err
	}

	correction, err := s.correctionRepo.GetCorrectionByExam(ctx, teacherID, examID)
	if err != nil {
		return nil, err
	}
	if correction == nil {
		return nil, nil
	}
	return correctionToResponse(correction), nil
}

// SaveCorrection upserts the correction of an exam
func (s *correctionServiceImpl) SaveCorrection(ctx context.Context, teacherID, examID int64, req *dto.SaveCorrectionRequest) (*dto.CorrectionResponse, error) {
	existing, err := s.correctionRepo.GetCorrectionByExam(ctx, teacherID, examID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		created, err := s.correctionRepo.CreateCorrection(ctx, &models.Correction{
			ExamID:    examID,
			TeacherID: teacherID,
			Content:   req.Content,
		})
		if err != nil {
			return nil, err
		}
		logger.Info().Int64("teacherID", teacherID).Int64("examID", examID).Int64("correctionID", created.ID).Msg("Correction created")
		return correctionToResponse(created), nil
	}

	updated, err := s.correctionRepo.UpdateCorrection(ctx, teacherID, existing.ID, req.Content)
	if err != nil {
		return nil, err
	}
	return correctionToResponse(updated), nil
}

// DownloadCorrection renders the correction content back into a .docx file
func (s *correctionServiceImpl) DownloadCorrection(ctx context.Context, teacherID, examID int64) (string, []byte, error) {
	exam, err := s.examRepo.GetExamByID(ctx, teacherID, examID)
	if err != nil {
		return "", nil, err
	}

	correction, err := s.correctionRepo.GetCorrectionByExam(ctx, teacherID, examID)
	if err != nil {
		return "", nil, err
	}
	if correction == nil {
		return "", nil, apperrors.NewResourceNotFoundError("Exam has no correction yet")
	}

	data, err := docconv.ToDocx(correction.Content)
	if err != nil {
		return "", nil, fmt.Errorf("error rendering correction document: %w", err)
	}
	return exam.Title + " - Korrektur.docx", data, nil
}

func correctionToResponse(c *models.Correction) *dto.CorrectionResponse {
	return &dto.CorrectionResponse{
		ID:        c.ID,
		ExamID:    c.ExamID,
		Content:   c.Content,
		UpdatedAt: c.UpdatedAt,
	}
}
