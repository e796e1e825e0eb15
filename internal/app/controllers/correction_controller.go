package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/klassenhub/klassenhub/internal/app/models/dto"
	"github.com/klassenhub/klassenhub/internal/app/services"
	"github.com/klassenhub/klassenhub/internal/middleware"
)

// CorrectionController handles exam correction operations
type CorrectionController struct {
	correctionService services.CorrectionService
}

// NewCorrectionController creates a new CorrectionController
func NewCorrectionController(correctionService services.CorrectionService) *CorrectionController {
	return &CorrectionController{correctionService: correctionService}
}

// GetCorrection returns the exam's correction, null when none exists
// @Summary Get the correction of an exam
// @Description Returns the correction, or a success envelope with null data when the exam has no correction yet
// @Tags corrections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 200 {object} dto.APIResponse{data=dto.CorrectionResponse} "Correction or null"
// @Failure 404 {object} dto.APIResponse "Exam not found"
// @Router /exams/{id}/correction [get]
func (c *CorrectionController) GetCorrection(ctx *gin.Context) {
	teacherID, ok := requireTeacherID(ctx)
	if !ok {
		return
	}
	examID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	correction, err := c.correctionService.GetCorrectionByExam(ctx, teacherID, examID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	// a missing correction is data:null, not an error
	if correction == nil {
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, ""))
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(correction, ""))
}

// SaveCorrection upserts the exam's correction
// @Summary Save the correction of an exam
// @Description Creates the correction on first save, updates it afterwards
// @Tags corrections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Param request body dto.SaveCorrectionRequest true "Correction content"
// @Success 200 {object} dto.APIResponse{data=dto.CorrectionResponse} "Correction saved"
// @Failure 404 {object} dto.APIResponse "Exam not found"
// @Router /exams/{id}/correction [put]
func (c *CorrectionController) SaveCorrection(ctx *gin.Context) {
	teacherID, ok := requireTeacherID(ctx)
	if !ok {
		return
	}
	examID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.SaveCorrectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	correction, err := c.correctionService.SaveCorrection(ctx, teacherID, examID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(correction, "Correction saved successfully"))
}

// DownloadCorrection streams the correction as a Word document
// @Summary Download the correction of an exam
// @Description Renders the correction content as a .docx file
// @Tags corrections
// @Produce application/vnd.openxmlformats-officedocument.wordprocessingml.document
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 200 {file} file "Rendered document"
// @Failure 404 {object} dto.APIResponse "Exam or correction not found"
// @Router /exams/{id}/correction/download [get]
func (c *CorrectionController) DownloadCorrection(ctx *gin.Context) {
	teacherID, ok := requireTeacherID(ctx)
	if !ok {
		return
	}
	examID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	filename, data, err := c.correctionService.DownloadCorrection(ctx, teacherID, examID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, docxContentType, data)
}
