package models

import "time"

// Chat message roles
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one entry of the AI chat attached to an exam workspace.
// A Pending assistant message is the server-side "typing" placeholder: it
// is created before the webhook call and either filled with the AI output
// or deleted when the call fails.
type ChatMessage struct {
	ID        int64     `json:"id"`
	TeacherID int64     `json:"teacherId"`
	ExamID    *int64    `json:"examId,omitempty"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Pending   bool      `json:"pending"`
	CreatedAt time.Time `json:"createdAt"`
}
