package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/teamspace/collab-api/internal/dto"
	apierrors "github.com/teamspace/collab-api/internal/errors"
	"github.com/teamspace/collab-api/internal/middleware"
	"github.com/teamspace/collab-api/internal/models"
	"github.com/teamspace/collab-api/internal/services"
)

// PresenceHandler coordinates presence and typing HTTP handlers.
type PresenceHandler struct {
	presService *services.PresenceService
}

// NewPresenceHandler creates a new PresenceHandler.
func NewPresenceHandler(presService *services.PresenceService) *PresenceHandler {
	return &PresenceHandler{
		presService: presService,
	}
}

// UpdatePresence sets the caller's workspace presence status.
func (h *PresenceHandler) UpdatePresence(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not loaded")
		return
	}
	userID, _ := middleware.GetUserID(c)

	type UpdatePresenceRequest struct {
		Status   models.PresenceStatus  `json:"status"`
		Metadata map[string]interface{} `json:"metadata"`
	}

	var req UpdatePresenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	p, err := h.presService.UpdateWorkspacePresence(userID, ws.ID, req.Status, req.Metadata)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPresenceDTO(*p))
}

// Heartbeat refreshes the caller's presence without changing status.
func (h *PresenceHandler) Heartbeat(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not loaded")
		return
	}
	userID, _ := middleware.GetUserID(c)

	if err := h.presService.Heartbeat(userID, ws.ID); err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "ok",
	})
}

// ListOnlineUsers lists users currently live in the workspace.
func (h *PresenceHandler) ListOnlineUsers(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not loaded")
		return
	}

	users, err := h.presService.GetOnlineUsers(ws.ID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
	})
}

// GetPresenceStats summarizes workspace presence by status.
func (h *PresenceHandler) GetPresenceStats(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not loaded")
		return
	}

	stats, err := h.presService.GetWorkspacePresenceStats(ws.ID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetUserStatus returns a member's effective status.
func (h *PresenceHandler) GetUserStatus(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not loaded")
		return
	}

	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	status, err := h.presService.GetUserStatus(targetID, ws.ID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": targetID,
		"status":  status,
	})
}

// UpdateChannelPresence sets the caller's presence within a channel.
func (h *PresenceHandler) UpdateChannelPresence(c *gin.Context) {
	ch, ok := middleware.GetChannel(c)
	if !ok {
		apierrors.InternalError(c, "Channel not loaded")
		return
	}
	userID, _ := middleware.GetUserID(c)

	type UpdatePresenceRequest struct {
		Status   models.PresenceStatus  `json:"status"`
		Metadata map[string]interface{} `json:"metadata"`
	}

	var req UpdatePresenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	p, err := h.presService.UpdateChannelPresence(userID, ch.WorkspaceID, ch.ID, req.Status, req.Metadata)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPresenceDTO(*p))
}

// ListChannelOnlineUsers lists users currently live in a channel.
func (h *PresenceHandler) ListChannelOnlineUsers(c *gin.Context) {
	ch, ok := middleware.GetChannel(c)
	if !ok {
		apierrors.InternalError(c, "Channel not loaded")
		return
	}

	users, err := h.presService.GetChannelOnlineUsers(ch.WorkspaceID, ch.ID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
	})
}

// StartTyping records the caller as typing in the channel for a short
// window. Repeated calls extend the window.
func (h *PresenceHandler) StartTyping(c *gin.Context) {
	ch, ok := middleware.GetChannel(c)
	if !ok {
		apierrors.InternalError(c, "Channel not loaded")
		return
	}
	userID, _ := middleware.GetUserID(c)

	t, err := h.presService.StartTyping(ch.ID, userID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"expires_at": t.ExpiresAt,
	})
}

// ListTypingUsers lists who is typing in the channel, excluding the caller.
func (h *PresenceHandler) ListTypingUsers(c *gin.Context) {
	ch, ok := middleware.GetChannel(c)
	if !ok {
		apierrors.InternalError(c, "Channel not loaded")
		return
	}
	userID, _ := middleware.GetUserID(c)

	indicators, err := h.presService.GetTypingUsers(ch.ID, userID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"typing": dto.ToTypingUserDTOs(indicators),
	})
}
