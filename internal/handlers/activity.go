package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/teamspace/collab-api/internal/constants"
	"github.com/teamspace/collab-api/internal/dto"
	apierrors "github.com/teamspace/collab-api/internal/errors"
	"github.com/teamspace/collab-api/internal/middleware"
	"github.com/teamspace/collab-api/internal/services"
)

// ActivityHandler coordinates activity log HTTP handlers.
type ActivityHandler struct {
	actService *services.ActivityService
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(actService *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		actService: actService,
	}
}

// ListWorkspaceActivities lists recent activities in the workspace.
func (h *ActivityHandler) ListWorkspaceActivities(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not loaded")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultActivityLimit)))

	activities, err := h.actService.ListWorkspaceActivities(ws.ID, limit)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activities": dto.ToActivityDTOs(activities),
	})
}

// ListMyActivities lists the caller's own recent activities.
func (h *ActivityHandler) ListMyActivities(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultActivityLimit)))

	activities, err := h.actService.ListUserActivities(userID, limit)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activities": dto.ToActivityDTOs(activities),
	})
}
