package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/klassenhub/klassenhub/internal/app/models/dto"
	"github.com/klassenhub/klassenhub/internal/app/services"
	"github.com/klassenhub/klassenhub/internal/middleware"
)

// ChatController handles the per-exam AI chat
type ChatController struct {
	chatService services.ChatService
}

// NewChatController creates a new ChatController
func NewChatController(chatService services.ChatService) *ChatController {
	return &ChatController{chatService: chatService}
}

// GetMessages returns the chat history of an exam
// @Summary Get chat history of an exam
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.ChatMessageResponse} "Messages, oldest first"
// @Failure 404 {object} dto.APIResponse "Exam not found"
// @Router /exams/{id}/chat [get]
func (c *ChatController) GetMessages(ctx *gin.Context) {
	teacherID, ok := requireTeacherID(ctx)
	if !ok {
		return
	}
	examID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	messages, err := c.chatService.GetMessages(ctx, teacherID, examID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(messages, ""))
}

// SendMessage runs one AI chat round-trip
// @Summary Send a chat message about an exam
// @Description Stores the message, calls the AI workflow and returns the assistant's reply. In correction mode the workflow may create or update the exam's correction.
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Param request body dto.SendChatMessageRequest true "Message payload"
// @Success 200 {object} dto.APIResponse{data=dto.ChatReplyResponse} "Assistant reply"
// @Failure 404 {object} dto.APIResponse "Exam not found"
// @Failure 502 {object} dto.APIResponse "AI workflow request failed"
// @Router /exams/{id}/chat [post]
func (c *ChatController) SendMessage(ctx *gin.Context) {
	teacherID, ok := requireTeacherID(ctx)
	if !ok {
		return
	}
	examID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.SendChatMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	reply, err := c.chatService.SendMessage(ctx, teacherID, examID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(reply, ""))
}
