package dto

import "time"

// SendChatMessageRequest sends a message to the AI workflow. Mode selects
// the webhook behavior: "chat" for conversational exam authoring,
// "correction" to request an AI correction of the exam.
type SendChatMessageRequest struct {
	Message string `json:"message" binding:"required"`
	Mode    string `json:"mode" binding:"omitempty,oneof=chat correction" example:"chat"`
}

// ChatMessageResponse is the API view of a chat message
type ChatMessageResponse struct {
	ID        int64     `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Pending   bool      `json:"pending"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChatReplyResponse is returned from a completed webhook round-trip. The
// optional ids surface rows the workflow created as a side effect.
type ChatReplyResponse struct {
	Message      ChatMessageResponse `json:"message"`
	ExamID       *int64              `json:"examId,omitempty"`
	CorrectionID *int64              `json:"correctionId,omitempty"`
}
