package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/teamspace/collab-api/internal/constants"
	"github.com/teamspace/collab-api/internal/database"
	"github.com/teamspace/collab-api/internal/models"
)

// RequireChannelAccess checks if the user may view the channel: any
// workspace member for public channels, an explicit channel member for
// private and direct ones
func RequireChannelAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		chIDStr := c.Param("id")
		chID, err := strconv.ParseUint(chIDStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid channel ID",
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

		var ch models.Channel
		if err := database.GetDB().First(&ch, chID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Channel not found",
			})
			c.Abort()
			return
		}

		// Workspace membership; a soft-deleted workspace hides its channels.
		var ws models.Workspace
		if err := database.GetDB().First(&ws, ch.WorkspaceID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Channel not found",
			})
			c.Abort()
			return
		}

		var wsMember models.WorkspaceMember
		err = database.GetDB().Where("workspace_id = ? AND user_id = ?", ch.WorkspaceID, userID).First(&wsMember).Error
		if err != nil {
			// Return 404 instead of 403 to avoid leaking channel existence
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Channel not found",
			})
			c.Abort()
			return
		}

		var chMember models.ChannelMember
		memberErr := database.GetDB().Where("channel_id = ? AND user_id = ?", chID, userID).First(&chMember).Error

		if ch.Type != models.ChannelPublic && memberErr != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Channel not found",
			})
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyWorkspace, ws)
		c.Set(constants.ContextKeyWorkspaceMember, wsMember)
		c.Set(constants.ContextKeyChannel, ch)
		if memberErr == nil {
			c.Set(constants.ContextKeyChannelMember, chMember)
		}
		c.Next()
	}
}

// GetChannel retrieves the channel set by RequireChannelAccess
func GetChannel(c *gin.Context) (models.Channel, bool) {
	v, exists := c.Get(constants.ContextKeyChannel)
	if !exists {
		return models.Channel{}, false
	}
	ch, ok := v.(models.Channel)
	return ch, ok
}

// GetChannelMember retrieves the channel membership set by
// RequireChannelAccess; absent for workspace members of public channels
// without an explicit membership row
func GetChannelMember(c *gin.Context) (models.ChannelMember, bool) {
	v, exists := c.Get(constants.ContextKeyChannelMember)
	if !exists {
		return models.ChannelMember{}, false
	}
	member, ok := v.(models.ChannelMember)
	return member, ok
}
