package models

import "time"

type ChannelRole string

const (
	ChannelRoleAdmin  ChannelRole = "admin"
	ChannelRoleMember ChannelRole = "member"
)

func ValidChannelRole(role ChannelRole) bool {
	return role == ChannelRoleAdmin || role == ChannelRoleMember
}

type NotificationPreference string

const (
	NotifyAll      NotificationPreference = "all"
	NotifyMentions NotificationPreference = "mentions"
	NotifyNone     NotificationPreference = "none"
)

// ChannelMember is an explicit membership row. Workspace members of public
// channels can view and post without one; the capability is derived at
// authorization time instead of materialized here.
type ChannelMember struct {
	ChannelID              uint64                 `gorm:"primarykey" json:"channel_id"`
	UserID                 uint64                 `gorm:"primarykey" json:"user_id"`
	Role                   ChannelRole            `gorm:"type:varchar(20);not null" json:"role"`
	NotificationPreference NotificationPreference `gorm:"type:varchar(20);not null;default:'all'" json:"notification_preference"`
	JoinedAt               time.Time              `json:"joined_at"`
	LastReadAt             *time.Time             `json:"last_read_at"`

	// Relations
	Channel Channel `gorm:"foreignKey:ChannelID" json:"channel,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
