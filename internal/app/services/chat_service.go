package services

import (
	"context"

	"github.com/klassenhub/klassenhub/internal/app/models"
	"github.com/klassenhub/klassenhub/internal/app/models/dto"
	"github.com/klassenhub/klassenhub/internal/app/repositories"
	"github.com/klassenhub/klassenhub/internal/pkg/logger"
	"github.com/klassenhub/klassenhub/internal/pkg/webhook"
)

// chatStore is the slice of chat persistence the service needs.
type chatStore interface {
	InsertMessage(ctx context.Context, msg *models.ChatMessage) (*models.ChatMessage, error)
	GetMessagesByExam(ctx context.Context, teacherID, examID int64) ([]models.ChatMessage, error)
	ResolvePendingMessage(ctx context.Context, teacherID, id int64, content string) (*models.ChatMessage, error)
	DeleteMessage(ctx context.Context, teacherID, id int64) error
}

// examGetter verifies exam ownership before chatting about it.
type examGetter interface {
	GetExamByID(ctx context.Context, teacherID, id int64) (*models.Exam, error)
}

// correctionGetter looks up an existing correction to reference in the
// webhook payload.
type correctionGetter interface {
	GetCorrectionByExam(ctx context.Context, teacherID, examID int64) (*models.Correction, error)
}

// ChatService defines the interface for the per-exam AI chat
type ChatService interface {
	GetMessages(ctx context.Context, teacherID, examID int64) ([]dto.ChatMessageResponse, error)
	SendMessage(ctx context.Context, teacherID, examID int64, req *dto.SendChatMessageRequest) (*dto.ChatReplyResponse, error)
}

// chatServiceImpl implements ChatService
type chatServiceImpl struct {
	chats       chatStore
	exams       examGetter
	corrections correctionGetter
	webhook     WebhookSender
}

// NewChatService creates a new ChatService
func NewChatService(
	chatRepo *repositories.ChatRepository,
	examRepo *repositories.ExamRepository,
	correctionRepo *repositories.CorrectionRepository,
	sender WebhookSender,
) ChatService {
	return newChatService(chatRepo, examRepo, correctionRepo, sender)
}

func newChatService(chats chatStore, exams examGetter, corrections correctionGetter, sender WebhookSender) ChatService {
	return &chatServiceImpl{
		chats:       chats,
		exams:       exams,
		corrections: corrections,
		webhook:     sender,
	}
}

// GetMessages returns the chat history of an exam, oldest first
func (s *chatServiceImpl) GetMessages(ctx context.Context, teacherID, examID int64) ([]dto.ChatMessageResponse, error) {
	if _, err := s.exams.GetExamByID(ctx, teacherID, examID); err != nil {
		return nil, err
	}

	messages, err := s.chats.GetMessagesByExam(ctx, teacherID, examID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ChatMessageResponse, 0, len(messages))
	for _, msg := range messages {
		responses = append(responses, messageToResponse(&msg))
	}
	return responses, nil
}

// SendMessage runs one webhook round-trip. The user message is stored
// first, then a pending assistant placeholder. A successful reply fills
// the placeholder; a failed one deletes it so no orphaned "typing" row
// survives.
func (s *chatServiceImpl) SendMessage(ctx context.Context, teacherID, examID int64, req *dto.SendChatMessageRequest) (*dto.ChatReplyResponse, error) {
	exam, err := s.exams.GetExamByID(ctx, teacherID, examID)
	if err != nil {
		return nil, err
	}

	mode := req.Mode
	if mode == "" {
		mode = webhook.ModeChat
	}

	if _, err := s.chats.InsertMessage(ctx, &models.ChatMessage{
		TeacherID: teacherID,
		ExamID:    &exam.ID,
		Role:      models.ChatRoleUser,
		Content:   req.Message,
	}); err != nil {
		return nil, err
	}

	placeholder, err := s.chats.InsertMessage(ctx, &models.ChatMessage{
		TeacherID: teacherID,
		ExamID:    &exam.ID,
		Role:      models.ChatRoleAssistant,
		Pending:   true,
	})
	if err != nil {
		return nil, err
	}

	var correctionID *int64
	if correction, err := s.corrections.GetCorrectionByExam(ctx, teacherID, examID); err == nil && correction != nil {
		correctionID = &correction.ID
	}

	reply, err := s.webhook.Send(ctx, webhook.Request{
		ExamID:       exam.ID,
		TeacherID:    teacherID,
		Message:      req.Message,
		Mode:         mode,
		CorrectionID: correctionID,
	})
	if err != nil {
		if delErr := s.chats.DeleteMessage(ctx, teacherID, placeholder.ID); delErr != nil {
			logger.Error().Err(delErr).Int64("messageID", placeholder.ID).Msg("Failed to remove pending chat placeholder")
		}
		return nil, err
	}

	resolved, err := s.chats.ResolvePendingMessage(ctx, teacherID, placeholder.ID, reply.Output)
	if err != nil {
		return nil, err
	}

	return &dto.ChatReplyResponse{
		Message:      messageToResponse(resolved),
		ExamID:       reply.ExamID,
		CorrectionID: reply.CorrectionID,
	}, nil
}

func messageToResponse(m *models.ChatMessage) dto.ChatMessageResponse {
	return dto.ChatMessageResponse{
		ID:        m.ID,
		Role:      m.Role,
		Content:   m.Content,
		Pending:   m.Pending,
		CreatedAt: m.CreatedAt,
	}
}
