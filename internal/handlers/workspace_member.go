package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/teamspace/collab-api/internal/dto"
	apierrors "github.com/teamspace/collab-api/internal/errors"
	"github.com/teamspace/collab-api/internal/middleware"
	"github.com/teamspace/collab-api/internal/models"
)

// AddMember adds a user to the workspace. Re-adding an existing member
// updates the role in place.
func (h *WorkspaceHandler) AddMember(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not loaded")
		return
	}
	userID, _ := middleware.GetUserID(c)

	type AddMemberRequest struct {
		UserID uint64               `json:"user_id" binding:"required"`
		Role   models.WorkspaceRole `json:"role"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.wsService.AddMember(ws.ID, userID, req.UserID, req.Role)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkspaceMemberDTO(*member))
}

// RemoveMember removes a member from the workspace. Removing someone who
// is not a member succeeds without change.
func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not loaded")
		return
	}
	userID, _ := middleware.GetUserID(c)

	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	removed, err := h.wsService.RemoveMember(ws.ID, userID, targetID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"removed": removed,
	})
}

// UpdateMemberRole changes a member's workspace role.
func (h *WorkspaceHandler) UpdateMemberRole(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not loaded")
		return
	}
	userID, _ := middleware.GetUserID(c)

	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	type UpdateRoleRequest struct {
		Role models.WorkspaceRole `json:"role" binding:"required"`
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.wsService.UpdateMemberRole(ws.ID, userID, targetID, req.Role)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceMemberDTO(*member))
}

// ListMembers lists all members of the workspace.
func (h *WorkspaceHandler) ListMembers(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not loaded")
		return
	}

	_, members, err := h.wsService.GetWorkspace(ws.ID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	memberDTOs := make([]dto.WorkspaceMemberDTO, len(members))
	for i, m := range members {
		memberDTOs[i] = dto.ToWorkspaceMemberDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{
		"members": memberDTOs,
	})
}
