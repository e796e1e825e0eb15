package dto

import (
	"time"

	"github.com/klassenhub/klassenhub/internal/app/models"
)

// RequestReportRequest asks the AI workflow to generate a report for a
// pupil. The row itself arrives asynchronously through the change stream.
type RequestReportRequest struct {
	PupilID int64  `json:"pupilId" binding:"required"`
	Message string `json:"message" binding:"required" example:"Zeugnisbericht für das 1. Halbjahr"`
}

// UpdateReportRequest renames a report; sections are immutable
type UpdateReportRequest struct {
	ReportTitle string `json:"reportTitle" binding:"required,max=200"`
}

// ReportResponse is the API view of a report
type ReportResponse struct {
	ID          int64                  `json:"id"`
	PupilID     int64                  `json:"pupilId"`
	ReportTitle string                 `json:"reportTitle"`
	RequestedAt time.Time              `json:"requestedAt"`
	Sections    []models.ReportSection `json:"sections"`
}
