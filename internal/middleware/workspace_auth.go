package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/teamspace/collab-api/internal/constants"
	"github.com/teamspace/collab-api/internal/database"
	"github.com/teamspace/collab-api/internal/models"
)

// RequireWorkspaceAccess checks if the user is a member of the workspace
func RequireWorkspaceAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		wsIDStr := c.Param("id")
		wsID, err := strconv.ParseUint(wsIDStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid workspace ID",
			})
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		// Soft-deleted workspaces are invisible here; restore goes through
		// its own lookup.
		var ws models.Workspace
		if err := database.GetDB().First(&ws, wsID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Workspace not found",
			})
			c.Abort()
			return
		}

		var member models.WorkspaceMember
		err = database.GetDB().Where("workspace_id = ? AND user_id = ?", wsID, userID).First(&member).Error
		if err != nil {
			// Return 404 instead of 403 to avoid leaking workspace existence
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Workspace not found",
			})
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyWorkspace, ws)
		c.Set(constants.ContextKeyWorkspaceMember, member)
		c.Next()
	}
}

// RequireWorkspaceManager checks if the user is an owner or admin of the
// workspace. Must run after RequireWorkspaceAccess.
func RequireWorkspaceManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		member, ok := GetWorkspaceMember(c)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Workspace access required",
			})
			c.Abort()
			return
		}

		if !member.Role.CanManageWorkspace() {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Only workspace owners and admins can perform this action",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireWorkspaceOwner checks if the user owns the workspace. Must run
// after RequireWorkspaceAccess.
func RequireWorkspaceOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, ok := GetWorkspace(c)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Workspace access required",
			})
			c.Abort()
			return
		}

		userID, _ := GetUserID(c)
		if ws.OwnerID != userID {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Only the workspace owner can perform this action",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetWorkspace retrieves the workspace set by RequireWorkspaceAccess
func GetWorkspace(c *gin.Context) (models.Workspace, bool) {
	v, exists := c.Get(constants.ContextKeyWorkspace)
	if !exists {
		return models.Workspace{}, false
	}
	ws, ok := v.(models.Workspace)
	return ws, ok
}

// GetWorkspaceMember retrieves the membership set by RequireWorkspaceAccess
func GetWorkspaceMember(c *gin.Context) (models.WorkspaceMember, bool) {
	v, exists := c.Get(constants.ContextKeyWorkspaceMember)
	if !exists {
		return models.WorkspaceMember{}, false
	}
	member, ok := v.(models.WorkspaceMember)
	return member, ok
}
