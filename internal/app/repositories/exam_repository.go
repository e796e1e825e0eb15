package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klassenhub/klassenhub/internal/app/models"
	"github.com/klassenhub/klassenhub/internal/pkg/apperrors"
	"github.com/klassenhub/klassenhub/internal/pkg/logger"
)

// ExamRepository handles exam database operations
type ExamRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewExamRepository creates a new ExamRepository
func NewExamRepository(db *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// CreateExam inserts a new exam and returns the stored row
func (r *ExamRepository) CreateExam(ctx context.Context, exam *models.Exam) (*models.Exam, error) {
	sql, args, err := r.sb.Insert("exams").
		Columns("teacher_id", "title", "content", "source_file_path").
		Values(exam.TeacherID, exam.Title, exam.Content, nullableString(exam.SourceFilePath)).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build create exam query: %w", err)
	}

	created := *exam
	err = r.db.QueryRow(ctx, sql, args...).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		logger.Error().Err(err).Int64("teacherID", exam.TeacherID).Msg("Error inserting exam")
		return nil, fmt.Errorf("error inserting exam: %w", err)
	}

	logger.Info().Int64("examID", created.ID).Int64("teacherID", created.TeacherID).Msg("Exam created")
	return &created, nil
}

// GetAllExams retrieves a teacher's exams with pagination, most recently
// updated first. Content is included; list views slim it down in the DTO.
func (r *ExamRepository) GetAllExams(ctx context.Context, teacherID int64, page, pageSize int) ([]models.Exam, int64, error) {
	countSql, countArgs, err := r.sb.Select("COUNT(*)").
		From("exams").
		Where(squirrel.Eq{"teacher_id": teacherID}).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count exams query: %w", err)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, countSql, countArgs...).Scan(&totalItems); err != nil {
		return nil, 0, fmt.Errorf("failed to count exams: %w", err)
	}

	if totalItems == 0 {
		return []models.Exam{}, 0, nil
	}

	offset := uint64((page - 1) * pageSize)
	querySql, args, err := r.sb.Select("id", "teacher_id", "title", "content", "source_file_path", "created_at", "updated_at").
		From("exams").
		Where(squirrel.Eq{"teacher_id": teacherID}).
		OrderBy("updated_at DESC").
		Limit(uint64(pageSize)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build get exams query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query exams: %w", err)
	}
	defer rows.Close()

	var exams []models.Exam
	for rows.Next() {
		var e models.Exam
		var sourcePath sql.NullString
		if err := rows.Scan(&e.ID, &e.TeacherID, &e.Title, &e.Content, &sourcePath, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan exam row: %w", err)
		}
		if sourcePath.Valid {
			e.SourceFilePath = &sourcePath.String
		}
		exams = append(exams, e)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating exam rows: %w", err)
	}

	return exams, totalItems, nil
}

// GetExamByID retrieves one exam owned by the teacher
func (r *ExamRepository) GetExamByID(ctx context.Context, teacherID, id int64) (*models.Exam, error) {
	querySql, args, err := r.sb.Select("id", "teacher_id", "title", "content", "source_file_path", "created_at", "updated_at").
		From("exams").
		Where(squirrel.Eq{"id": id, "teacher_id": teacherID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get exam query: %w", err)
	}

	var e models.Exam
	var sourcePath sql.NullString
	err = r.db.QueryRow(ctx, querySql, args...).Scan(
		&e.ID, &e.TeacherID, &e.Title, &e.Content, &sourcePath, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrExamNotFound
		}
		return nil, fmt.Errorf("error querying exam ID=%d: %w", id, err)
	}
	if sourcePath.Valid {
		e.SourceFilePath = &sourcePath.String
	}

	return &e, nil
}

// UpdateExam updates the title and/or content of an exam
func (r *ExamRepository) UpdateExam(ctx context.Context, teacherID, id int64, title, content *string) (*models.Exam, error) {
	set := map[string]interface{}{"updated_at": time.Now()}
	if title != nil {
		set["title"] = *title
	}
	if content != nil {
		set["content"] = *content
	}

	querySql, args, err := r.sb.Update("exams").
		SetMap(set).
		Where(squirrel.Eq{"id": id, "teacher_id": teacherID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update exam query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, querySql, args...)
	if err != nil {
		return nil, fmt.Errorf("error updating exam ID=%d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		logger.Warn().Int64("examID", id).Msg("Attempted to update non-existent exam")
		return nil, apperrors.ErrExamNotFound
	}

	return r.GetExamByID(ctx, teacherID, id)
}

// DeleteExam removes an exam. Corrections and chat messages cascade in the
// database.
func (r *ExamRepository) DeleteExam(ctx context.Context, teacherID, id int64) error {
	querySql, args, err := r.sb.Delete("exams").
		Where(squirrel.Eq{"id": id, "teacher_id": teacherID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete exam query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, querySql, args...)
	if err != nil {
		return fmt.Errorf("error deleting exam ID=%d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		logger.Warn().Int64("examID", id).Msg("Attempted to delete non-existent exam")
		return apperrors.ErrExamNotFound
	}

	logger.Info().Int64("examID", id).Msg("Exam deleted")
	return nil
}
