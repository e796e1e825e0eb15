package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/klassenhub/klassenhub/internal/app/models/dto"
	"github.com/klassenhub/klassenhub/internal/app/repositories"
	"github.com/klassenhub/klassenhub/internal/pkg/docconv"
	"github.com/klassenhub/klassenhub/internal/pkg/logger"
	"github.com/klassenhub/klassenhub/internal/pkg/webhook"
)

// WebhookSender is the slice of the webhook client services depend on.
type WebhookSender interface {
	Send(ctx context.Context, req webhook.Request) (*webhook.Response, error)
}

// ReportService defines the interface for report operations. Report rows
// are written by the AI workflow; RequestReport only triggers it and the
// generated row arrives through the change stream.
type ReportService interface {
	RequestReport(ctx context.Context, teacherID int64, req *dto.RequestReportRequest) error
	GetReportsByPupil(ctx context.Context, teacherID, pupilID int64) ([]dto.ReportResponse, error)
	GetReportByID(ctx context.Context, teacherID, id int64) (*dto.ReportResponse, error)
	UpdateReportTitle(ctx context.Context, teacherID, id int64, req *dto.UpdateReportRequest) (*dto.ReportResponse, error)
	DeleteReport(ctx context.Context, teacherID, id int64) error
	DownloadReport(ctx context.Context, teacherID, id int64) (filename string, data []byte, err error)
	ExportReports(ctx context.Context, teacherID, pupilID int64) (filename string, data []byte, err error)
}

// reportServiceImpl implements ReportService
type reportServiceImpl struct {
	reportRepo *repositories.ReportRepository
	pupilRepo  *repositories.PupilRepository
	webhook    WebhookSender
}

// NewReportService creates a new ReportService
func NewReportService(
	reportRepo *repositories.ReportRepository,
	pupilRepo *repositories.PupilRepository,
	sender WebhookSender,
) ReportService {
	return &reportServiceImpl{
		reportRepo: reportRepo,
		pupilRepo:  pupilRepo,
		webhook:    sender,
	}
}

// RequestReport asks the AI workflow to generate a report for a pupil.
func (s *reportServiceImpl) RequestReport(ctx context.Context, teacherID int64, req *dto.RequestReportRequest) error {
	pupil, err := s.pupilRepo.GetPupilByID(ctx, teacherID, req.PupilID)
	if err != nil {
		return err
	}

	if _, err := s.webhook.Send(ctx, webhook.Request{
		TeacherID: teacherID,
		Message:   req.Message,
		Mode:      webhook.ModeReport,
		PupilID:   &pupil.ID,
	}); err != nil {
		return err
	}

	logger.Info().Int64("teacherID", teacherID).Int64("pupilID", pupil.ID).Msg("Report requested")
	return nil
}

// GetReportsByPupil lists a pupil's reports, newest first
func (s *reportServiceImpl) GetReportsByPupil(ctx context.Context, teacherID, pupilID int64) ([]dto.ReportResponse, error) {
	if _, err := s.pupilRepo.GetPupilByID(ctx, teacherID, pupilID); err != nil {
		return nil, err
	}

	reports, err := s.reportRepo.GetReportsByPupil(ctx, teacherID, pupilID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ReportResponse, 0, len(reports))
	for _, report := range reports {
		responses = append(responses, dto.ReportResponse{
			ID:          report.ID,
			PupilID:     report.PupilID,
			ReportTitle: report.ReportTitle,
			RequestedAt: report.RequestedAt,
			Sections:    report.Sections,
		})
	}
	return responses, nil
}

// GetReportByID returns one report owned by the teacher
func (s *reportServiceImpl) GetReportByID(ctx context.Context, teacherID, id int64) (*dto.ReportResponse, error) {
	report, err := s.reportRepo.GetReportByID(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}
	return &dto.ReportResponse{
		ID:          report.ID,
		PupilID:     report.PupilID,
		ReportTitle: report.ReportTitle,
		RequestedAt: report.RequestedAt,
		Sections:    report.Sections,
	}, nil
}

// UpdateReportTitle renames a report; sections stay as generated
func (s *reportServiceImpl) UpdateReportTitle(ctx context.Context, teacherID, id int64, req *dto.UpdateReportRequest) (*dto.ReportResponse, error) {
	report, err := s.reportRepo.UpdateReportTitle(ctx, teacherID, id, req.ReportTitle)
	if err != nil {
		return nil, err
	}
	return &dto.ReportResponse{
		ID:          report.ID,
		PupilID:     report.PupilID,
		ReportTitle: report.ReportTitle,
		RequestedAt: report.RequestedAt,
		Sections:    report.Sections,
	}, nil
}

// DeleteReport removes a report
func (s *reportServiceImpl) DeleteReport(ctx context.Context, teacherID, id int64) error {
	return s.reportRepo.DeleteReport(ctx, teacherID, id)
}

// DownloadReport renders one report as a .docx document
func (s *reportServiceImpl) DownloadReport(ctx context.Context, teacherID, id int64) (string, []byte, error) {
	report, err := s.reportRepo.GetReportByID(ctx, teacherID, id)
	if err != nil {
		return "", nil, err
	}

	sections := make([]docconv.Section, 0, len(report.Sections))
	for _, section := range report.Sections {
		sections = append(sections, docconv.Section{Label: section.Label, Text: section.Text})
	}

	data, err := docconv.SectionsToDocx(report.ReportTitle, sections)
	if err != nil {
		return "", nil, fmt.Errorf("error rendering report document: %w", err)
	}
	return report.ReportTitle + ".docx", data, nil
}

// ExportReports writes all of a pupil's reports into one xlsx workbook,
// one row per report section.
func (s *reportServiceImpl) ExportReports(ctx context.Context, teacherID, pupilID int64) (string, []byte, error) {
	pupil, err := s.pupilRepo.GetPupilByID(ctx, teacherID, pupilID)
	if err != nil {
		return "", nil, err
	}

	reports, err := s.reportRepo.GetReportsByPupil(ctx, teacherID, pupilID)
	if err != nil {
		return "", nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Reports"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", nil, fmt.Errorf("error preparing workbook: %w", err)
	}

	header := []interface{}{"Report", "Requested", "Section", "Text"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return "", nil, fmt.Errorf("error writing workbook header: %w", err)
	}

	rowNum := 2
	for _, report := range reports {
		for _, section := range report.Sections {
			row := []interface{}{
				report.ReportTitle,
				report.RequestedAt.Format("2006-01-02"),
				section.Label,
				section.Text,
			}
			cell, err := excelize.CoordinatesToCellName(1, rowNum)
			if err != nil {
				return "", nil, fmt.Errorf("error addressing workbook row: %w", err)
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return "", nil, fmt.Errorf("error writing workbook row: %w", err)
			}
			rowNum++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return "", nil, fmt.Errorf("error encoding workbook: %w", err)
	}

	filename := fmt.Sprintf("reports-%s.xlsx", pupil.Name)
	return filename, buf.Bytes(), nil
}
