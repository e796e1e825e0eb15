package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/klassenhub/klassenhub/internal/app/models/dto"
	"github.com/klassenhub/klassenhub/internal/app/services"
	"github.com/klassenhub/klassenhub/internal/middleware"
	"github.com/klassenhub/klassenhub/internal/pkg/helpers"
)

// docxContentType is the MIME type of rendered .docx downloads.
const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// ExamController handles exam related operations
type ExamController struct {
	examService services.ExamService
}

// NewExamController creates a new ExamController
func NewExamController(examService services.ExamService) *ExamController {
	return &ExamController{examService: examService}
}

// CreateExam creates an exam from content
// @Summary Create an exam
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateExamRequest true "Exam payload"
// @Success 201 {object} dto.APIResponse{data=dto.ExamResponse} "Exam created"
// @Failure 400 {object} dto.APIResponse "Invalid request format"
// @Router /exams [post]
func (c *ExamController) CreateExam(ctx *gin.Context) {
	teacherID, ok := requireTeacherID(ctx)
	if !ok {
		return
	}

	var req dto.CreateExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	exam, err := c.examService.CreateExam(ctx, teacherID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(exam, "Exam created successfully"))
}

// GetAllExams lists the teacher's exams
// @Summary List exams
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20)"
// @Success 200 {object} dto.APIResponse{data=[]dto.ExamListItem,pagination=dto.PaginationInfo} "Exams"
// @Router /exams [get]
func (c *ExamController) GetAllExams(ctx *gin.Context) {
	teacherID, ok := requireTeacherID(ctx)
	if !ok {
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	exams, pagination, err := c.examService.GetAllExams(ctx, teacherID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewPagedResponse(exams, pagination))
}

// GetExamByID returns one exam with content
// @Summary Get exam by ID
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 200 {object} dto.APIResponse{data=dto.ExamResponse} "Exam"
// @Failure 404 {object} dto.APIResponse "Exam not found"
// @Router /exams/{id} [get]
func (c *ExamController) GetExamByID(ctx *gin.Context) {
	teacherID, ok := requireTeacherID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	exam, err := c.examService.GetExamByID(ctx, teacherID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(exam, ""))
}

// UpdateExam patches an exam
// @Summary Update an exam
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Param request body dto.UpdateExamRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.ExamResponse} "Exam updated"
// @Failure 404 {object} dto.APIResponse "Exam not found"
// @Router /exams/{id} [put]
func (c *ExamController) UpdateExam(ctx *gin.Context) {
	teacherID, ok := requireTeacherID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	exam, err := c.examService.UpdateExam(ctx, teacherID, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(exam, "Exam updated successfully"))
}

// DeleteExam removes an exam
// @Summary Delete an exam
// @Description Deletes the exam together with its correction and chat history
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 200 {object} dto.APIResponse "Exam deleted"
// @Failure 404 {object} dto.APIResponse "Exam not found"
// @Router /exams/{id} [delete]
func (c *ExamController) DeleteExam(ctx *gin.Context) {
	teacherID, ok := requireTeacherID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.examService.DeleteExam(ctx, teacherID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Exam deleted successfully"))
}

// UploadExams converts uploaded Word files into exams
// @Summary Upload exam documents
// @Description Accepts one or more .doc/.docx files and creates one exam per file
// @Tags exams
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param files formData file true "One or more .doc/.docx files"
// @Success 201 {object} dto.APIResponse{data=[]dto.UploadedExamResponse} "Exams created"
// @Failure 400 {object} dto.APIResponse "Unsupported file type"
// @Router /exams/upload [post]
func (c *ExamController) UploadExams(ctx *gin.Context) {
	teacherID, ok := requireTeacherID(ctx)
	if !ok {
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid multipart form").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	results, err := c.examService.UploadExams(ctx, teacherID, form.File["files"])
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(results, "Exams created from upload"))
}

// DownloadExam renders the exam as .docx
// @Summary Download an exam as .docx
// @Tags exams
// @Produce application/vnd.openxmlformats-officedocument.wordprocessingml.document
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 200 {file} file "Rendered document"
// @Failure 404 {object} dto.APIResponse "Exam not found"
// @Router /exams/{id}/download [get]
func (c *ExamController) DownloadExam(ctx *gin.Context) {
	teacherID, ok := requireTeacherID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	filename, data, err := c.examService.DownloadExam(ctx, teacherID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, docxContentType, data)
}

// GetEditorState returns the exam's editor session state
// @Summary Get the editor state of an exam
// @Description Opens an editor session in edit mode on first access
// @Tags editor
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 200 {object} dto.APIResponse{data=dto.EditorStateResponse} "Editor state"
// @Failure 404 {object} dto.APIResponse "Exam not found"
// @Router /exams/{id}/editor [get]
func (c *ExamController) GetEditorState(ctx *gin.Context) {
	teacherID, ok := requireTeacherID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	state, err := c.examService.EditorState(ctx, teacherID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(state, ""))
}

// EditorAction applies one editor command
// @Summary Drive the exam editor
// @Description Applies "buffer", "toggle" or "save" to the editor session and returns the new state
// @Tags editor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Param request body dto.EditorActionRequest true "Editor command"
// @Success 200 {object} dto.APIResponse{data=dto.EditorStateResponse} "Editor state after the command"
// @Failure 400 {object} dto.APIResponse "Unknown action"
// @Failure 404 {object} dto.APIResponse "Exam not found"
// @Router /exams/{id}/editor [post]
func (c *ExamController) EditorAction(ctx *gin.Context) {
	teacherID, ok := requireTeacherID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.EditorActionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	state, err := c.examService.EditorAction(ctx, teacherID, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(state, ""))
}
