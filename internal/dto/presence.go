package dto

import (
	"time"

	"github.com/teamspace/collab-api/internal/models"
)

// PresenceDTO represents a presence record in API responses
type PresenceDTO struct {
	UserID         uint64                `json:"user_id"`
	WorkspaceID    uint64                `json:"workspace_id"`
	ChannelID      *uint64               `json:"channel_id,omitempty"`
	Status         models.PresenceStatus `json:"status"`
	LastActivityAt time.Time             `json:"last_activity_at"`
}

// TypingUserDTO represents an active typing indicator
type TypingUserDTO struct {
	UserID    uint64    `json:"user_id"`
	StartedAt time.Time `json:"started_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ToPresenceDTO converts a UserPresence model to PresenceDTO
func ToPresenceDTO(p models.UserPresence) PresenceDTO {
	return PresenceDTO{
		UserID:         p.UserID,
		WorkspaceID:    p.WorkspaceID,
		ChannelID:      p.ChannelID,
		Status:         p.Status,
		LastActivityAt: p.LastActivityAt,
	}
}

// ToTypingUserDTOs converts typing indicator rows
func ToTypingUserDTOs(indicators []models.TypingIndicator) []TypingUserDTO {
	dtos := make([]TypingUserDTO, len(indicators))
	for i, t := range indicators {
		dtos[i] = TypingUserDTO{
			UserID:    t.UserID,
			StartedAt: t.StartedAt,
			ExpiresAt: t.ExpiresAt,
		}
	}
	return dtos
}
