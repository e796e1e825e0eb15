package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klassenhub/klassenhub/internal/app/models"
	"github.com/klassenhub/klassenhub/internal/pkg/apperrors"
	"github.com/klassenhub/klassenhub/internal/pkg/logger"
)

// PupilRepository handles pupil database operations. Every query is scoped
// to the owning teacher; a row owned by someone else behaves as not found.
type PupilRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPupilRepository creates a new PupilRepository
func NewPupilRepository(db *pgxpool.Pool) *PupilRepository {
	return &PupilRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreatePupil inserts a new pupil for a teacher
func (r *PupilRepository) CreatePupil(ctx context.Context, pupil *models.Pupil) (*models.Pupil, error) {
	sql, args, err := r.sb.Insert("pupils").
		Columns("teacher_id", "name").
		Values(pupil.TeacherID, pupil.Name).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build create pupil query: %w", err)
	}

	created := *pupil
	err = r.db.QueryRow(ctx, sql, args...).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		logger.Error().Err(err).Int64("teacherID", pupil.TeacherID).Msg("Error inserting pupil")
		return nil, fmt.Errorf("error inserting pupil: %w", err)
	}

	logger.Info().Int64("pupilID", created.ID).Int64("teacherID", created.TeacherID).Msg("Pupil created")
	return &created, nil
}

// GetAllPupils retrieves a teacher's pupils with pagination, newest first
func (r *PupilRepository) GetAllPupils(ctx context.Context, teacherID int64, page, pageSize int) ([]models.Pupil, int64, error) {
	countSql, countArgs, err := r.sb.Select("COUNT(*)").
		From("pupils").
		Where(squirrel.Eq{"teacher_id": teacherID}).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count pupils query: %w", err)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, countSql, countArgs...).Scan(&totalItems); err != nil {
		return nil, 0, fmt.Errorf("failed to count pupils: %w", err)
	}

	if totalItems == 0 {
		return []models.Pupil{}, 0, nil
	}

	offset := uint64((page - 1) * pageSize)
	sql, args, err := r.sb.Select("id", "teacher_id", "name", "created_at").
		From("pupils").
		Where(squirrel.Eq{"teacher_id": teacherID}).
		OrderBy("created_at DESC").
		Limit(uint64(pageSize)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build get pupils query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query pupils: %w", err)
	}
	defer rows.Close()

	var pupils []models.Pupil
	for rows.Next() {
		var p models.Pupil
		if err := rows.Scan(&p.ID, &p.TeacherID, &p.Name, &p.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan pupil row: %w", err)
		}
		pupils = append(pupils, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating pupil rows: %w", err)
	}

	return pupils, totalItems, nil
}

// GetPupilByID retrieves one pupil owned by the teacher
func (r *PupilRepository) GetPupilByID(ctx context.Context, teacherID, id int64) (*models.Pupil, error) {
	sql, args, err := r.sb.Select("id", "teacher_id", "name", "created_at").
		From("pupils").
		Where(squirrel.Eq{"id": id, "teacher_id": teacherID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get pupil query: %w", err)
	}

	var p models.Pupil
	err = r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.TeacherID, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPupilNotFound
		}
		return nil, fmt.Errorf("error querying pupil ID=%d: %w", id, err)
	}

	return &p, nil
}
