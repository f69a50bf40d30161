package dto

import (
	"time"

	"github.com/teamspace/collab-api/internal/models"
)

// ChannelDTO represents a channel in API responses
type ChannelDTO struct {
	ID          uint64                 `json:"id"`
	UUID        string                 `json:"uuid"`
	WorkspaceID uint64                 `json:"workspace_id"`
	CreatorID   uint64                 `json:"creator_id"`
	Name        string                 `json:"name"`
	Slug        string                 `json:"slug"`
	Description string                 `json:"description"`
	Type        models.ChannelType     `json:"type"`
	Settings    map[string]interface{} `json:"settings,omitempty"`
	IsArchived  bool                   `json:"is_archived"`
	ArchivedAt  *time.Time             `json:"archived_at"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// ChannelMemberDTO represents a member in a channel
type ChannelMemberDTO struct {
	User                   UserDTO                       `json:"user"`
	Role                   models.ChannelRole            `json:"role"`
	NotificationPreference models.NotificationPreference `json:"notification_preference"`
	JoinedAt               time.Time                     `json:"joined_at"`
	LastReadAt             *time.Time                    `json:"last_read_at"`
}

// ToChannelDTO converts a Channel model to ChannelDTO
func ToChannelDTO(ch models.Channel) ChannelDTO {
	return ChannelDTO{
		ID:          ch.ID,
		UUID:        ch.UUID,
		WorkspaceID: ch.WorkspaceID,
		CreatorID:   ch.CreatorID,
		Name:        ch.Name,
		Slug:        ch.Slug,
		Description: ch.Description,
		Type:        ch.Type,
		Settings:    ch.Settings,
		IsArchived:  ch.IsArchived,
		ArchivedAt:  ch.ArchivedAt,
		CreatedAt:   ch.CreatedAt,
		UpdatedAt:   ch.UpdatedAt,
	}
}

// ToChannelDTOs converts a slice of channels
func ToChannelDTOs(channels []models.Channel) []ChannelDTO {
	dtos := make([]ChannelDTO, len(channels))
	for i, ch := range channels {
		dtos[i] = ToChannelDTO(ch)
	}
	return dtos
}

// ToChannelMemberDTO converts a channel member to DTO
func ToChannelMemberDTO(member models.ChannelMember) ChannelMemberDTO {
	return ChannelMemberDTO{
		User:                   ToUserDTO(member.User),
		Role:                   member.Role,
		NotificationPreference: member.NotificationPreference,
		JoinedAt:               member.JoinedAt,
		LastReadAt:             member.LastReadAt,
	}
}

// ToChannelMemberDTOs converts a slice of channel members
func ToChannelMemberDTOs(members []models.ChannelMember) []ChannelMemberDTO {
	dtos := make([]ChannelMemberDTO, len(members))
	for i, member := range members {
		dtos[i] = ToChannelMemberDTO(member)
	}
	return dtos
}
