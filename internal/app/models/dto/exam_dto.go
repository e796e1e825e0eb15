package dto

import "time"

// CreateExamRequest creates an exam from already-converted text content
type CreateExamRequest struct {
	Title   string `json:"title" binding:"required,max=200" example:"Math test 7b"`
	Content string `json:"content" example:"# Aufgabe 1\n..."`
}

// UpdateExamRequest updates the exam document content (editor save)
type UpdateExamRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// ExamResponse is the API view of an exam
type ExamResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ExamListItem is the slim list view of an exam (no content body)
type ExamListItem struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UploadedExamResponse describes one exam created from an uploaded file
type UploadedExamResponse struct {
	ExamID   int64  `json:"examId"`
	Title    string `json:"title"`
	Filename string `json:"filename"`
}

// CorrectionResponse is the API view of an exam correction. Endpoints
// return a null body instead of an error when no correction exists yet.
type CorrectionResponse struct {
	ID        int64     `json:"id"`
	ExamID    int64     `json:"examId"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SaveCorrectionRequest upserts the correction content of an exam
type SaveCorrectionRequest struct {
	Content string `json:"content" binding:"required"`
}

// EditorStateResponse is the API view of a mode-switching editor session
type EditorStateResponse struct {
	ExamID int64  `json:"examId"`
	Mode   string `json:"mode" example:"edit"`
	Buffer string `json:"buffer"`
	Dirty  bool   `json:"dirty"`
}

// EditorActionRequest drives an editor session. Action is one of
// "buffer" (replace the live buffer), "toggle" (switch edit/correction)
// or "save" (persist the buffer in the current mode).
type EditorActionRequest struct {
	Action string `json:"action" binding:"required,oneof=buffer toggle save"`
	Buffer string `json:"buffer,omitempty"`
}
