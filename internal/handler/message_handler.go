package handler

import (
	"net/http"

	"github.com/Baaaki/car-marketplace/internal/middleware"
	"github.com/Baaaki/car-marketplace/internal/service"
	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
	}
}

type UpdateMessageRequest struct {
	MessageText string `json:"message_text"`
}

// Send stores a message from the caller.
// POST /api/messages
func (h *MessageHandler) Send(c *gin.Context) {
	var req service.SendInput
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), middleware.CurrentSession(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Message sent successfully",
		"data":    msg,
	})
}

// GET /api/messages/inbox
func (h *MessageHandler) Inbox(c *gin.Context) {
	messages, err := h.messageService.Inbox(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// GET /api/messages/sent
func (h *MessageHandler) Sent(c *gin.Context) {
	messages, err := h.messageService.Sent(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// Thread returns the conversation with another user, oldest first.
// GET /api/messages/thread/:otherUserId
func (h *MessageHandler) Thread(c *gin.Context) {
	otherID, ok := pathID(c, "otherUserId")
	if !ok {
		return
	}

	messages, err := h.messageService.Thread(c.Request.Context(), middleware.CurrentSession(c), otherID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// Update replaces the text of a message.
// PUT /api/messages/:id
func (h *MessageHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.messageService.UpdateText(c.Request.Context(), middleware.CurrentSession(c), id, req.MessageText)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Message updated successfully",
		"data":    msg,
	})
}

// DELETE /api/messages/:id
func (h *MessageHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.messageService.Delete(c.Request.Context(), middleware.CurrentSession(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
}
