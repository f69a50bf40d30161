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

// WorkspaceHandler coordinates workspace HTTP handlers.
type WorkspaceHandler struct {
	wsService *services.WorkspaceService
}

// NewWorkspaceHandler creates a new WorkspaceHandler.
func NewWorkspaceHandler(wsService *services.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{
		wsService: wsService,
	}
}

// CreateWorkspace creates a new workspace owned by the caller.
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateWorkspaceRequest struct {
		Name        string                 `json:"name" binding:"required,max=255"`
		Slug        string                 `json:"slug" binding:"max=100"`
		Description string                 `json:"description"`
		Settings    map[string]interface{} `json:"settings"`
	}

	var req CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	ws, err := h.wsService.CreateWorkspace(services.CreateWorkspaceInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Settings:    req.Settings,
		OwnerID:     userID,
	})
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkspaceDTO(*ws))
}

// ListWorkspaces lists workspaces the caller belongs to, with counts.
func (h *WorkspaceHandler) ListWorkspaces(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	workspaces, counts, err := h.wsService.ListUserWorkspaces(userID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	items := make([]dto.WorkspaceListItemDTO, len(workspaces))
	for i, ws := range workspaces {
		role, err := h.wsService.MemberRole(ws.ID, userID)
		if err != nil {
			apierrors.RespondWithDomainError(c, err)
			return
		}
		var r models.WorkspaceRole
		if role != nil {
			r = *role
		}
		items[i] = dto.ToWorkspaceListItemDTO(ws, r, counts[ws.ID])
	}

	c.JSON(http.StatusOK, gin.H{
		"workspaces": items,
	})
}

// GetWorkspace returns a workspace with its member roster.
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not loaded")
		return
	}
	member, _ := middleware.GetWorkspaceMember(c)

	_, members, err := h.wsService.GetWorkspace(ws.ID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDetailDTO(ws, members, member.Role))
}

// UpdateWorkspace applies partial updates to a workspace.
func (h *WorkspaceHandler) UpdateWorkspace(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not loaded")
		return
	}
	userID, _ := middleware.GetUserID(c)

	type UpdateWorkspaceRequest struct {
		Name        *string                `json:"name" binding:"omitempty,max=255"`
		Slug        *string                `json:"slug" binding:"omitempty,max=100"`
		Description *string                `json:"description"`
		Settings    map[string]interface{} `json:"settings"`
		IsActive    *bool                  `json:"is_active"`
	}

	var req UpdateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.wsService.UpdateWorkspace(ws.ID, userID, services.UpdateWorkspaceInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Settings:    req.Settings,
		IsActive:    req.IsActive,
	})
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(*updated))
}

// DeleteWorkspace soft deletes a workspace. Owner only.
func (h *WorkspaceHandler) DeleteWorkspace(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not loaded")
		return
	}
	userID, _ := middleware.GetUserID(c)

	if err := h.wsService.DeleteWorkspace(ws.ID, userID); err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Workspace deleted successfully",
	})
}

// RestoreWorkspace restores a soft-deleted workspace. Owner only. The
// workspace is invisible to the access middleware while deleted, so this
// route resolves its ID directly.
func (h *WorkspaceHandler) RestoreWorkspace(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	wsID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid workspace ID")
		return
	}

	ws, err := h.wsService.RestoreWorkspace(wsID, userID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(*ws))
}
