package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/klassenhub/klassenhub/internal/app/models/dto"
	"github.com/klassenhub/klassenhub/internal/middleware"
)

// parseIDParam reads a numeric path parameter, writing the 400 response
// itself when the value is not a number.
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name).
			WithDetails(name + " must be a valid number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// requireTeacherID reads the authenticated teacher from the context,
// writing the 401 response itself when missing.
func requireTeacherID(ctx *gin.Context) (int64, bool) {
	teacherID, ok := middleware.GetTeacherID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "User not authenticated")))
		return 0, false
	}
	return teacherID, true
}
