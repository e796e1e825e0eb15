package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klassenhub/klassenhub/internal/app/models"
	"github.com/klassenhub/klassenhub/internal/app/models/dto"
	"github.com/klassenhub/klassenhub/internal/pkg/apperrors"
	"github.com/klassenhub/klassenhub/internal/pkg/webhook"
)

type fakeChatStore struct {
	nextID   int64
	messages map[int64]*models.ChatMessage
	deleted  []int64
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{messages: make(map[int64]*models.ChatMessage)}
}

func (f *fakeChatStore) InsertMessage(_ context.Context, msg *models.ChatMessage) (*models.ChatMessage, error) {
	f.nextID++
	stored := *msg
	stored.ID = f.nextID
	stored.CreatedAt = time.Now()
	f.messages[stored.ID] = &stored
	return &stored, nil
}

func (f *fakeChatStore) GetMessagesByExam(_ context.Context, _, _ int64) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	for _, msg := range f.messages {
		out = append(out, *msg)
	}
	return out, nil
}

func (f *fakeChatStore) ResolvePendingMessage(_ context.Context, _, id int64, content string) (*models.ChatMessage, error) {
	msg, ok := f.messages[id]
	if !ok || !msg.Pending {
		return nil, apperrors.ErrChatMessageNotFound
	}
	msg.Pending = false
	msg.Content = content
	return msg, nil
}

func (f *fakeChatStore) DeleteMessage(_ context.Context, _, id int64) error {
	if _, ok := f.messages[id]; !ok {
		return apperrors.ErrChatMessageNotFound
	}
	delete(f.messages, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeChatStore) pendingCount() int {
	count := 0
	for _, msg := range f.messages {
		if msg.Pending {
			count++
		}
	}
	return count
}

type fakeExamGetter struct {
	exam *models.Exam
}

func (f *fakeExamGetter) GetExamByID(_ context.Context, _, _ int64) (*models.Exam, error) {
	if f.exam == nil {
		return nil, apperrors.ErrExamNotFound
	}
	return f.exam, nil
}

type fakeCorrectionGetter struct {
	correction *models.Correction
}

func (f *fakeCorrectionGetter) GetCorrectionByExam(_ context.Context, _, _ int64) (*models.Correction, error) {
	return f.correction, nil
}

type fakeSender struct {
	lastRequest webhook.Request
	reply       *webhook.Response
	err         error
}

func (f *fakeSender) Send(_ context.Context, req webhook.Request) (*webhook.Response, error) {
	f.lastRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func TestChatService_SendMessage_ResolvesPlaceholder(t *testing.T) {
	chats := newFakeChatStore()
	sender := &fakeSender{reply: &webhook.Response{Output: "Hier ist ein Vorschlag."}}
	svc := newChatService(chats, &fakeExamGetter{exam: &models.Exam{ID: 5, TeacherID: 1}}, &fakeCorrectionGetter{}, sender)

	reply, err := svc.SendMessage(context.Background(), 1, 5, &dto.SendChatMessageRequest{Message: "Formuliere Aufgabe 2 um."})
	require.NoError(t, err)

	assert.Equal(t, "Hier ist ein Vorschlag.", reply.Message.Content)
	assert.False(t, reply.Message.Pending)
	assert.Zero(t, chats.pendingCount())
	assert.Len(t, chats.messages, 2)

	assert.Equal(t, webhook.ModeChat, sender.lastRequest.Mode, "mode defaults to chat")
	assert.Equal(t, int64(5), sender.lastRequest.ExamID)
	assert.Nil(t, sender.lastRequest.CorrectionID)
}

func TestChatService_SendMessage_FailureRemovesPlaceholder(t *testing.T) {
	chats := newFakeChatStore()
	sender := &fakeSender{err: apperrors.ErrWebhookFailed}
	svc := newChatService(chats, &fakeExamGetter{exam: &models.Exam{ID: 5, TeacherID: 1}}, &fakeCorrectionGetter{}, sender)

	_, err := svc.SendMessage(context.Background(), 1, 5, &dto.SendChatMessageRequest{Message: "Korrigiere bitte.", Mode: "correction"})
	assert.ErrorIs(t, err, apperrors.ErrWebhookFailed)

	// the user message survives, the typing placeholder does not
	assert.Zero(t, chats.pendingCount())
	assert.Len(t, chats.messages, 1)
	assert.Len(t, chats.deleted, 1)
}

func TestChatService_SendMessage_ForwardsExistingCorrectionID(t *testing.T) {
	chats := newFakeChatStore()
	sender := &fakeSender{reply: &webhook.Response{Output: "Aktualisiert."}}
	svc := newChatService(
		chats,
		&fakeExamGetter{exam: &models.Exam{ID: 5, TeacherID: 1}},
		&fakeCorrectionGetter{correction: &models.Correction{ID: 12, ExamID: 5}},
		sender,
	)

	_, err := svc.SendMessage(context.Background(), 1, 5, &dto.SendChatMessageRequest{Message: "Überarbeite die Korrektur.", Mode: "correction"})
	require.NoError(t, err)

	require.NotNil(t, sender.lastRequest.CorrectionID)
	assert.Equal(t, int64(12), *sender.lastRequest.CorrectionID)
	assert.Equal(t, webhook.ModeCorrection, sender.lastRequest.Mode)
}

func TestChatService_SendMessage_UnknownExam(t *testing.T) {
	chats := newFakeChatStore()
	svc := newChatService(chats, &fakeExamGetter{}, &fakeCorrectionGetter{}, &fakeSender{})

	_, err := svc.SendMessage(context.Background(), 1, 99, &dto.SendChatMessageRequest{Message: "hi"})
	assert.ErrorIs(t, err, apperrors.ErrExamNotFound)
	assert.Empty(t, chats.messages)
}
