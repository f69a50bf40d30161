package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/teamspace/collab-api/internal/dto"
	apierrors "github.com/teamspace/collab-api/internal/errors"
	"github.com/teamspace/collab-api/internal/middleware"
	"github.com/teamspace/collab-api/internal/models"
	"github.com/teamspace/collab-api/internal/services"
	"github.com/teamspace/collab-api/internal/utils"
)

// MessageHandler coordinates message HTTP handlers.
type MessageHandler struct {
	msgService *services.MessageService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(msgService *services.MessageService) *MessageHandler {
	return &MessageHandler{
		msgService: msgService,
	}
}

// respondMessageError sends a message-service error. Message routes are not
// behind channel middleware, so a channel the caller may not view is
// presented as a missing message rather than a 403.
func respondMessageError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrChannelAccessDenied) {
		apierrors.NotFound(c, "Message not found")
		return
	}
	apierrors.RespondWithDomainError(c, err)
}

// SendMessage posts a message to the channel.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	ch, ok := middleware.GetChannel(c)
	if !ok {
		apierrors.InternalError(c, "Channel not loaded")
		return
	}
	userID, _ := middleware.GetUserID(c)

	type SendMessageRequest struct {
		Content     string                 `json:"content" binding:"required"`
		ContentType models.ContentType     `json:"content_type"`
		ParentID    *uint64                `json:"parent_id"`
		Metadata    map[string]interface{} `json:"metadata"`
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	msg, err := h.msgService.SendMessage(ch.ID, userID, services.SendMessageInput{
		Content:     req.Content,
		ContentType: req.ContentType,
		ParentID:    req.ParentID,
		Metadata:    req.Metadata,
	})
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMessageDTO(*msg))
}

// ListMessages returns a page of the channel's root messages, newest first.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	ch, ok := middleware.GetChannel(c)
	if !ok {
		apierrors.InternalError(c, "Channel not loaded")
		return
	}
	userID, _ := middleware.GetUserID(c)

	params := utils.GetPaginationParams(c)

	messages, total, err := h.msgService.GetChannelMessages(ch.ID, userID, params)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMessageListResponse(messages, params.Page, params.Limit, total))
}

// GetMessage returns a single message with reactions.
func (h *MessageHandler) GetMessage(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	msgID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid message ID")
		return
	}

	msg, err := h.msgService.GetMessage(msgID, userID)
	if err != nil {
		respondMessageError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMessageDTO(*msg))
}

// UpdateMessage edits a message. Author only.
func (h *MessageHandler) UpdateMessage(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	msgID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid message ID")
		return
	}

	type UpdateMessageRequest struct {
		Content string `json:"content" binding:"required"`
	}

	var req UpdateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	msg, err := h.msgService.UpdateMessage(msgID, userID, req.Content)
	if err != nil {
		respondMessageError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMessageDTO(*msg))
}

// DeleteMessage soft deletes a message.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	msgID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid message ID")
		return
	}

	if err := h.msgService.DeleteMessage(msgID, userID); err != nil {
		respondMessageError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Message deleted successfully",
	})
}

// GetThread returns a thread root together with its replies, oldest reply
// first.
func (h *MessageHandler) GetThread(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	msgID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid message ID")
		return
	}

	root, replies, err := h.msgService.GetThreadMessages(msgID, userID)
	if err != nil {
		respondMessageError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ThreadResponse{
		Root:    dto.ToMessageDTO(*root),
		Replies: dto.ToMessageDTOs(replies),
	})
}

// AddReaction reacts to a message with an emoji.
func (h *MessageHandler) AddReaction(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	msgID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid message ID")
		return
	}

	type AddReactionRequest struct {
		Emoji string `json:"emoji" binding:"required"`
	}

	var req AddReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	reaction, err := h.msgService.AddReaction(msgID, userID, req.Emoji)
	if err != nil {
		respondMessageError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reaction)
}

// RemoveReaction removes the caller's reaction. Removing an absent
// reaction succeeds without change.
func (h *MessageHandler) RemoveReaction(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	msgID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid message ID")
		return
	}

	emoji := c.Param("emoji")
	if emoji == "" {
		apierrors.BadRequest(c, "Invalid emoji")
		return
	}

	removed, err := h.msgService.RemoveReaction(msgID, userID, emoji)
	if err != nil {
		respondMessageError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"removed": removed,
	})
}

// PinMessage pins a message to its channel. Channel admins only.
func (h *MessageHandler) PinMessage(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	msgID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid message ID")
		return
	}

	msg, err := h.msgService.PinMessage(msgID, userID)
	if err != nil {
		respondMessageError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMessageDTO(*msg))
}

// UnpinMessage clears a message's pin.
func (h *MessageHandler) UnpinMessage(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	msgID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid message ID")
		return
	}

	msg, err := h.msgService.UnpinMessage(msgID, userID)
	if err != nil {
		respondMessageError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMessageDTO(*msg))
}

// ListPinnedMessages lists the channel's pinned messages.
func (h *MessageHandler) ListPinnedMessages(c *gin.Context) {
	ch, ok := middleware.GetChannel(c)
	if !ok {
		apierrors.InternalError(c, "Channel not loaded")
		return
	}
	userID, _ := middleware.GetUserID(c)

	messages, err := h.msgService.GetPinnedMessages(ch.ID, userID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": dto.ToMessageDTOs(messages),
	})
}
