package models

import "time"

// Exam represents an exam document authored by a teacher. Content is the
// Markdown representation of the document; exams created from an upload
// additionally keep a reference to the original file on disk.
type Exam struct {
	ID             int64     `json:"id"`
	TeacherID      int64     `json:"teacherId"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	SourceFilePath *string   `json:"sourceFilePath,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// EntityID implements syncstore.Entity.
func (e Exam) EntityID() int64 { return e.ID }

// Correction is the corrected version of an exam. An exam has at most one
// correction (unique index on exam_id).
type Correction struct {
	ID        int64     `json:"id"`
	ExamID    int64     `json:"examId"`
	TeacherID int64     `json:"teacherId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EntityID implements syncstore.Entity.
func (c Correction) EntityID() int64 { return c.ID }
