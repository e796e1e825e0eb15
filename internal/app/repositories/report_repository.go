package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klassenhub/klassenhub/internal/app/models"
	"github.com/klassenhub/klassenhub/internal/pkg/apperrors"
	"github.com/klassenhub/klassenhub/internal/pkg/logger"
)

// ReportRepository handles report database operations. Report rows are
// normally inserted by the external AI workflow; the repository still
// supports inserts for seeding and tests.
type ReportRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanSections(raw []byte) ([]models.ReportSection, error) {
	if len(raw) == 0 {
		return []models.ReportSection{}, nil
	}
	var sections []models.ReportSection
	if err := json.Unmarshal(raw, &sections); err != nil {
		return nil, fmt.Errorf("failed to decode report sections: %w", err)
	}
	return sections, nil
}

// CreateReport inserts a new report row
func (r *ReportRepository) CreateReport(ctx context.Context, report *models.Report) (*models.Report, error) {
	sectionsJSON, err := json.Marshal(report.Sections)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report sections: %w", err)
	}

	querySql, args, err := r.sb.Insert("reports").
		Columns("teacher_id", "pupil_id", "report_title", "sections").
		Values(report.TeacherID, report.PupilID, report.ReportTitle, sectionsJSON).
		Suffix("RETURNING id, requested_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build create report query: %w", err)
	}

	created := *report
	err = r.db.QueryRow(ctx, querySql, args...).Scan(&created.ID, &created.RequestedAt)
	if err != nil {
		logger.Error().Err(err).Int64("pupilID", report.PupilID).Msg("Error inserting report")
		return nil, fmt.Errorf("error inserting report: %w", err)
	}

	return &created, nil
}

// GetReportByID retrieves one report owned by the teacher
func (r *ReportRepository) GetReportByID(ctx context.Context, teacherID, id int64) (*models.Report, error) {
	querySql, args, err := r.sb.Select("id", "teacher_id", "pupil_id", "report_title", "requested_at", "sections").
		From("reports").
		Where(squirrel.Eq{"id": id, "teacher_id": teacherID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get report query: %w", err)
	}

	var rep models.Report
	var rawSections []byte
	err = r.db.QueryRow(ctx, querySql, args...).Scan(
		&rep.ID, &rep.TeacherID, &rep.PupilID, &rep.ReportTitle, &rep.RequestedAt, &rawSections,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrReportNotFound
		}
		return nil, fmt.Errorf("error querying report ID=%d: %w", id, err)
	}

	rep.Sections, err = scanSections(rawSections)
	if err != nil {
		return nil, err
	}

	return &rep, nil
}

// GetReportsByPupil retrieves all reports of one pupil, newest request first
func (r *ReportRepository) GetReportsByPupil(ctx context.Context, teacherID, pupilID int64) ([]models.Report, error) {
	querySql, args, err := r.sb.Select("id", "teacher_id", "pupil_id", "report_title", "requested_at", "sections").
		From("reports").
		Where(squirrel.Eq{"pupil_id": pupilID, "teacher_id": teacherID}).
		OrderBy("requested_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get reports query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		var rep models.Report
		var rawSections []byte
		if err := rows.Scan(&rep.ID, &rep.TeacherID, &rep.PupilID, &rep.ReportTitle, &rep.RequestedAt, &rawSections); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		rep.Sections, err = scanSections(rawSections)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report rows: %w", err)
	}

	return reports, nil
}

// UpdateReportTitle renames a report
func (r *ReportRepository) UpdateReportTitle(ctx context.Context, teacherID, id int64, title string) (*models.Report, error) {
	querySql, args, err := r.sb.Update("reports").
		Set("report_title", title).
		Where(squirrel.Eq{"id": id, "teacher_id": teacherID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update report query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, querySql, args...)
	if err != nil {
		return nil, fmt.Errorf("error updating report ID=%d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		logger.Warn().Int64("reportID", id).Msg("Attempted to rename non-existent report")
		return nil, apperrors.ErrReportNotFound
	}

	return r.GetReportByID(ctx, teacherID, id)
}

// DeleteReport removes a report
func (r *ReportRepository) DeleteReport(ctx context.Context, teacherID, id int64) error {
	querySql, args, err := r.sb.Delete("reports").
		Where(squirrel.Eq{"id": id, "teacher_id": teacherID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete report query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, querySql, args...)
	if err != nil {
		return fmt.Errorf("error deleting report ID=%d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrReportNotFound
	}

	logger.Info().Int64("reportID", id).Msg("Report deleted")
	return nil
}
