package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/klassenhub/klassenhub/internal/app/models/dto"
	"github.com/klassenhub/klassenhub/internal/app/services"
	"github.com/klassenhub/klassenhub/internal/middleware"
	"github.com/klassenhub/klassenhub/internal/pkg/helpers"
)

// PupilController handles pupil related operations
type PupilController struct {
	pupilService services.PupilService
}

// NewPupilController creates a new PupilController
func NewPupilController(pupilService services.PupilService) *PupilController {
	return &PupilController{pupilService: pupilService}
}

// CreatePupil adds a pupil
// @Summary Add a pupil
// @Tags pupils
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePupilRequest true "Pupil payload"
// @Success 201 {object} dto.APIResponse{data=dto.PupilResponse} "Pupil created"
// @Failure 400 {object} dto.APIResponse "Invalid request format"
// @Router /pupils [post]
func (c *PupilController) CreatePupil(ctx *gin.Context) {
	teacherID, ok := requireTeacherID(ctx)
	if !ok {
		return
	}

	var req dto.CreatePupilRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	pupil, err := c.pupilService.CreatePupil(ctx, teacherID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(pupil, "Pupil created successfully"))
}

// GetAllPupils lists the teacher's pupils
// @Summary List pupils
// @Tags pupils
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20)"
// @Success 200 {object} dto.APIResponse{data=[]dto.PupilResponse,pagination=dto.PaginationInfo} "Pupils"
// @Router /pupils [get]
func (c *PupilController) GetAllPupils(ctx *gin.Context) {
	teacherID, ok := requireTeacherID(ctx)
	if !ok {
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	pupils, pagination, err := c.pupilService.GetAllPupils(ctx, teacherID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewPagedResponse(pupils, pagination))
}

// GetPupilByID returns one pupil
// @Summary Get pupil by ID
// @Tags pupils
// @Produce json
// @Security BearerAuth
// @Param id path int true "Pupil ID"
// @Success 200 {object} dto.APIResponse{data=dto.PupilResponse} "Pupil"
// @Failure 404 {object} dto.APIResponse "Pupil not found"
// @Router /pupils/{id} [get]
func (c *PupilController) GetPupilByID(ctx *gin.Context) {
	teacherID, ok := requireTeacherID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	pupil, err := c.pupilService.GetPupilByID(ctx, teacherID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(pupil, ""))
}
