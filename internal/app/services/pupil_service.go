package services

import (
	"context"

	"github.com/klassenhub/klassenhub/internal/app/models"
	"github.com/klassenhub/klassenhub/internal/app/models/dto"
	"github.com/klassenhub/klassenhub/internal/app/repositories"
	"github.com/klassenhub/klassenhub/internal/pkg/helpers"
	"github.com/klassenhub/klassenhub/internal/pkg/logger"
)

// PupilService defines the interface for pupil operations
type PupilService interface {
	CreatePupil(ctx context.Context, teacherID int64, req *dto.CreatePupilRequest) (*dto.PupilResponse, error)
	GetAllPupils(ctx context.Context, teacherID int64, page, pageSize int) ([]dto.PupilResponse, dto.PaginationInfo, error)
	GetPupilByID(ctx context.Context, teacherID, id int64) (*dto.PupilResponse, error)
}

// pupilServiceImpl implements PupilService
type pupilServiceImpl struct {
	pupilRepo *repositories.PupilRepository
}

// NewPupilService creates a new PupilService
func NewPupilService(pupilRepo *repositories.PupilRepository) PupilService {
	return &pupilServiceImpl{pupilRepo: pupilRepo}
}

// CreatePupil adds a pupil to the teacher's list
func (s *pupilServiceImpl) CreatePupil(ctx context.Context, teacherID int64, req *dto.CreatePupilRequest) (*dto.PupilResponse, error) {
	pupil, err := s.pupilRepo.CreatePupil(ctx, &models.Pupil{
		TeacherID: teacherID,
		Name:      req.Name,
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("teacherID", teacherID).Int64("pupilID", pupil.ID).Msg("Pupil created")
	return pupilToResponse(pupil), nil
}

// GetAllPupils lists the teacher's pupils with pagination
func (s *pupilServiceImpl) GetAllPupils(ctx context.Context, teacherID int64, page, pageSize int) ([]dto.PupilResponse, dto.PaginationInfo, error) {
	pupils, total, err := s.pupilRepo.GetAllPupils(ctx, teacherID, page, pageSize)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}

	responses := make([]dto.PupilResponse, 0, len(pupils))
	for i := range pupils {
		responses = append(responses, *pupilToResponse(&pupils[i]))
	}
	return responses, helpers.NewPaginationInfo(total, page, pageSize), nil
}

// GetPupilByID returns one pupil owned by the teacher
func (s *pupilServiceImpl) GetPupilByID(ctx context.Context, teacherID, id int64) (*dto.PupilResponse, error) {
	pupil, err := s.pupilRepo.GetPupilByID(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}
	return pupilToResponse(pupil), nil
}

func pupilToResponse(p *models.Pupil) *dto.PupilResponse {
	return &dto.PupilResponse{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
	}
}
