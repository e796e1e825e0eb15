package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/klassenhub/klassenhub/internal/app/models/dto"
	"github.com/klassenhub/klassenhub/internal/app/services"
	"github.com/klassenhub/klassenhub/internal/middleware"
)

// xlsxContentType is the MIME type of workbook exports.
const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportController handles report related operations
type ReportController struct {
	reportService services.ReportService
}

// NewReportController creates a new ReportController
func NewReportController(reportService services.ReportService) *ReportController {
	return &ReportController{reportService: reportService}
}

// RequestReport triggers report generation
// @Summary Request an AI report for a pupil
// @Description Triggers the AI workflow. The report row arrives asynchronously over the change stream once generated.
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RequestReportRequest true "Report request"
// @Success 202 {object} dto.APIResponse "Report generation started"
// @Failure 404 {object} dto.APIResponse "Pupil not found"
// @Failure 502 {object} dto.APIResponse "AI workflow request failed"
// @Router /reports [post]
func (c *ReportController) RequestReport(ctx *gin.Context) {
	teacherID, ok := requireTeacherID(ctx)
	if !ok {
		return
	}

	var req dto.RequestReportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.reportService.RequestReport(ctx, teacherID, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusAccepted, dto.NewSuccessResponse(nil, "Report generation started"))
}

// GetReportsByPupil lists a pupil's reports
// @Summary List reports of a pupil
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path int true "Pupil ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.ReportResponse} "Reports"
// @Failure 404 {object} dto.APIResponse "Pupil not found"
// @Router /pupils/{id}/reports [get]
func (c *ReportController) GetReportsByPupil(ctx *gin.Context) {
	teacherID, ok := requireTeacherID(ctx)
	if !ok {
		return
	}
	pupilID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	reports, err := c.reportService.GetReportsByPupil(ctx, teacherID, pupilID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(reports, ""))
}

// GetReportByID returns one report
// @Summary Get report by ID
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Success 200 {object} dto.APIResponse{data=dto.ReportResponse} "Report"
// @Failure 404 {object} dto.APIResponse "Report not found"
// @Router /reports/{id} [get]
func (c *ReportController) GetReportByID(ctx *gin.Context) {
	teacherID, ok := requireTeacherID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	report, err := c.reportService.GetReportByID(ctx, teacherID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(report, ""))
}

// UpdateReport renames a report
// @Summary Rename a report
// @Description Only the title is editable; sections stay as generated
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Param request body dto.UpdateReportRequest true "New title"
// @Success 200 {object} dto.APIResponse{data=dto.ReportResponse} "Report renamed"
// @Failure 404 {object} dto.APIResponse "Report not found"
// @Router /reports/{id} [patch]
func (c *ReportController) UpdateReport(ctx *gin.Context) {
	teacherID, ok := requireTeacherID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateReportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	report, err := c.reportService.UpdateReportTitle(ctx, teacherID, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(report, "Report renamed successfully"))
}

// DeleteReport removes a report
// @Summary Delete a report
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Success 200 {object} dto.APIResponse "Report deleted"
// @Failure 404 {object} dto.APIResponse "Report not found"
// @Router /reports/{id} [delete]
func (c *ReportController) DeleteReport(ctx *gin.Context) {
	teacherID, ok := requireTeacherID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.reportService.DeleteReport(ctx, teacherID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Report deleted successfully"))
}

// DownloadReport renders one report as .docx
// @Summary Download a report as .docx
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.wordprocessingml.document
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Success 200 {file} file "Rendered document"
// @Failure 404 {object} dto.APIResponse "Report not found"
// @Router /reports/{id}/download [get]
func (c *ReportController) DownloadReport(ctx *gin.Context) {
	teacherID, ok := requireTeacherID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	filename, data, err := c.reportService.DownloadReport(ctx, teacherID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, docxContentType, data)
}

// ExportReports exports all of a pupil's reports as xlsx
// @Summary Export a pupil's reports as a workbook
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path int true "Pupil ID"
// @Success 200 {file} file "Workbook"
// @Failure 404 {object} dto.APIResponse "Pupil not found"
// @Router /pupils/{id}/reports/export.xlsx [get]
func (c *ReportController) ExportReports(ctx *gin.Context) {
	teacherID, ok := requireTeacherID(ctx)
	if !ok {
		return
	}
	pupilID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	filename, data, err := c.reportService.ExportReports(ctx, teacherID, pupilID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, xlsxContentType, data)
}
