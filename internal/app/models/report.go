package models

import "time"

// ReportSection is one labeled text block of a performance report. The
// order of sections is significant and preserved as stored.
type ReportSection struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Report is an AI-generated performance report for a pupil. Rows are
// inserted asynchronously by the external workflow once a teacher requests
// a report; only the title is editable afterwards.
type Report struct {
	ID          int64           `json:"id"`
	TeacherID   int64           `json:"teacherId"`
	PupilID     int64           `json:"pupilId"`
	ReportTitle string          `json:"reportTitle"`
	RequestedAt time.Time       `json:"requestedAt"`
	Sections    []ReportSection `json:"sections"`
}

// EntityID implements syncstore.Entity.
func (r Report) EntityID() int64 { return r.ID }
