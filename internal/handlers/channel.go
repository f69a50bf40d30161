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

// ChannelHandler coordinates channel HTTP handlers.
type ChannelHandler struct {
	chService *services.ChannelService
}

// NewChannelHandler creates a new ChannelHandler.
func NewChannelHandler(chService *services.ChannelService) *ChannelHandler {
	return &ChannelHandler{
		chService: chService,
	}
}

// CreateChannel creates a channel in the workspace.
func (h *ChannelHandler) CreateChannel(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not loaded")
		return
	}
	userID, _ := middleware.GetUserID(c)

	type CreateChannelRequest struct {
		Name        string                 `json:"name" binding:"required,max=255"`
		Slug        string                 `json:"slug" binding:"max=100"`
		Description string                 `json:"description"`
		Type        models.ChannelType     `json:"type"`
		Settings    map[string]interface{} `json:"settings"`
		OtherUserID *uint64                `json:"other_user_id"`
	}

	var req CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	ch, err := h.chService.CreateChannel(ws.ID, userID, services.CreateChannelInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Type:        req.Type,
		Settings:    req.Settings,
		OtherUserID: req.OtherUserID,
	})
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToChannelDTO(*ch))
}

// ListChannels lists the workspace's channels visible to the caller.
// Archived channels are excluded unless include_archived=true.
func (h *ChannelHandler) ListChannels(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not loaded")
		return
	}
	userID, _ := middleware.GetUserID(c)

	includeArchived := c.Query("include_archived") == "true"

	channels, err := h.chService.ListWorkspaceChannels(ws.ID, userID, includeArchived)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"channels": dto.ToChannelDTOs(channels),
	})
}

// GetChannel returns a channel.
func (h *ChannelHandler) GetChannel(c *gin.Context) {
	ch, ok := middleware.GetChannel(c)
	if !ok {
		apierrors.InternalError(c, "Channel not loaded")
		return
	}

	c.JSON(http.StatusOK, dto.ToChannelDTO(ch))
}

// UpdateChannel applies partial updates to a channel.
func (h *ChannelHandler) UpdateChannel(c *gin.Context) {
	ch, ok := middleware.GetChannel(c)
	if !ok {
		apierrors.InternalError(c, "Channel not loaded")
		return
	}
	userID, _ := middleware.GetUserID(c)

	type UpdateChannelRequest struct {
		Name        *string                `json:"name" binding:"omitempty,max=255"`
		Slug        *string                `json:"slug" binding:"omitempty,max=100"`
		Description *string                `json:"description"`
		Settings    map[string]interface{} `json:"settings"`
	}

	var req UpdateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.chService.UpdateChannel(ch.ID, userID, services.UpdateChannelInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Settings:    req.Settings,
	})
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToChannelDTO(*updated))
}

// ArchiveChannel archives the channel. Idempotent.
func (h *ChannelHandler) ArchiveChannel(c *gin.Context) {
	ch, ok := middleware.GetChannel(c)
	if !ok {
		apierrors.InternalError(c, "Channel not loaded")
		return
	}
	userID, _ := middleware.GetUserID(c)

	updated, err := h.chService.ArchiveChannel(ch.ID, userID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToChannelDTO(*updated))
}

// UnarchiveChannel clears the archived flag. Idempotent.
func (h *ChannelHandler) UnarchiveChannel(c *gin.Context) {
	ch, ok := middleware.GetChannel(c)
	if !ok {
		apierrors.InternalError(c, "Channel not loaded")
		return
	}
	userID, _ := middleware.GetUserID(c)

	updated, err := h.chService.UnarchiveChannel(ch.ID, userID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToChannelDTO(*updated))
}

// DeleteChannel permanently deletes the channel and everything in it.
func (h *ChannelHandler) DeleteChannel(c *gin.Context) {
	ch, ok := middleware.GetChannel(c)
	if !ok {
		apierrors.InternalError(c, "Channel not loaded")
		return
	}
	userID, _ := middleware.GetUserID(c)

	if err := h.chService.DeleteChannel(ch.ID, userID); err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Channel deleted successfully",
	})
}

// AddChannelMember adds a workspace member to the channel.
func (h *ChannelHandler) AddChannelMember(c *gin.Context) {
	ch, ok := middleware.GetChannel(c)
	if !ok {
		apierrors.InternalError(c, "Channel not loaded")
		return
	}
	userID, _ := middleware.GetUserID(c)

	type AddChannelMemberRequest struct {
		UserID uint64             `json:"user_id" binding:"required"`
		Role   models.ChannelRole `json:"role"`
	}

	var req AddChannelMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.chService.AddMember(ch.ID, userID, req.UserID, req.Role)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToChannelMemberDTO(*member))
}

// RemoveChannelMember removes a member from the channel. Members may leave
// on their own; removing others takes management rights.
func (h *ChannelHandler) RemoveChannelMember(c *gin.Context) {
	ch, ok := middleware.GetChannel(c)
	if !ok {
		apierrors.InternalError(c, "Channel not loaded")
		return
	}
	userID, _ := middleware.GetUserID(c)

	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	removed, err := h.chService.RemoveMember(ch.ID, userID, targetID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"removed": removed,
	})
}

// ListChannelMembers lists the channel's explicit members.
func (h *ChannelHandler) ListChannelMembers(c *gin.Context) {
	ch, ok := middleware.GetChannel(c)
	if !ok {
		apierrors.InternalError(c, "Channel not loaded")
		return
	}
	userID, _ := middleware.GetUserID(c)

	members, err := h.chService.ListMembers(ch.ID, userID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"members": dto.ToChannelMemberDTOs(members),
	})
}
