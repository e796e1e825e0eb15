package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klassenhub/klassenhub/internal/app/models"
	"github.com/klassenhub/klassenhub/internal/pkg/apperrors"
	"github.com/klassenhub/klassenhub/internal/pkg/dberrors"
	"github.com/klassenhub/klassenhub/internal/pkg/logger"
)

// CorrectionRepository handles correction database operations. An exam has
// at most one correction (unique index on exam_id).
type CorrectionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCorrectionRepository creates a new CorrectionRepository
func NewCorrectionRepository(db *pgxpool.Pool) *CorrectionRepository {
	return &CorrectionRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetCorrectionByExam retrieves the correction of an exam. A missing
// correction is a valid empty result: (nil, nil), not an error. This is the
// only single-row lookup in the data layer with that behavior.
func (r *CorrectionRepository) GetCorrectionByExam(ctx context.Context, teacherID, examID int64) (*models.Correction, error) {
	querySql, args, err := r.sb.Select("id", "exam_id", "teacher_id", "content", "created_at", "updated_at").
		From("corrections").
		Where(squirrel.Eq{"exam_id": examID, "teacher_id": teacherID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get correction query: %w", err)
	}

	var c models.Correction
	err = r.db.QueryRow(ctx, querySql, args...).Scan(
		&c.ID, &c.ExamID, &c.TeacherID, &c.Content, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying correction for exam ID=%d: %w", examID, err)
	}

	return &c, nil
}

// GetCorrectionByID retrieves one correction owned by the teacher
func (r *CorrectionRepository) GetCorrectionByID(ctx context.Context, teacherID, id int64) (*models.Correction, error) {
	querySql, args, err := r.sb.Select("id", "exam_id", "teacher_id", "content", "created_at", "updated_at").
		From("corrections").
		Where(squirrel.Eq{"id": id, "teacher_id": teacherID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get correction query: %w", err)
	}

	var c models.Correction
	err = r.db.QueryRow(ctx, querySql, args...).Scan(
		&c.ID, &c.ExamID, &c.TeacherID, &c.Content, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error querying correction ID=%d: %w", id, err)
	}

	return &c, nil
}

// CreateCorrection inserts the correction of an exam
func (r *CorrectionRepository) CreateCorrection(ctx context.Context, correction *models.Correction) (*models.Correction, error) {
	querySql, args, err := r.sb.Insert("corrections").
		Columns("exam_id", "teacher_id", "content").
		Values(correction.ExamID, correction.TeacherID, correction.Content).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build create correction query: %w", err)
	}

	created := *correction
	err = r.db.QueryRow(ctx, querySql, args...).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return nil, apperrors.ErrCorrectionExists
		}
		if dberrors.IsForeignKeyViolation(err) {
			return nil, apperrors.ErrExamNotFound
		}
		logger.Error().Err(err).Int64("examID", correction.ExamID).Msg("Error inserting correction")
		return nil, fmt.Errorf("error inserting correction: %w", err)
	}

	logger.Info().Int64("correctionID", created.ID).Int64("examID", created.ExamID).Msg("Correction created")
	return &created, nil
}

// UpdateCorrection replaces the correction content
func (r *CorrectionRepository) UpdateCorrection(ctx context.Context, teacherID, id int64, content string) (*models.Correction, error) {
	querySql, args, err := r.sb.Update("corrections").
		SetMap(map[string]interface{}{
			"content":    content,
			"updated_at": time.Now(),
		}).
		Where(squirrel.Eq{"id": id, "teacher_id": teacherID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update correction query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, querySql, args...)
	if err != nil {
		return nil, fmt.Errorf("error updating correction ID=%d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, apperrors.ErrResourceNotFound
	}

	return r.GetCorrectionByID(ctx, teacherID, id)
}
