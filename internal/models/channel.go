package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChannelType string

const (
	ChannelPublic  ChannelType = "public"
	ChannelPrivate ChannelType = "private"
	ChannelDirect  ChannelType = "direct"
)

func ValidChannelType(t ChannelType) bool {
	switch t {
	case ChannelPublic, ChannelPrivate, ChannelDirect:
		return true
	}
	return false
}

// Channel slugs are unique within the owning workspace, not globally.
type Channel struct {
	ID          uint64            `gorm:"primarykey" json:"id"`
	UUID        string            `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	WorkspaceID uint64            `gorm:"not null;uniqueIndex:idx_channels_workspace_slug" json:"workspace_id"`
	CreatorID   uint64            `gorm:"not null;index" json:"creator_id"`
	Name        string            `gorm:"type:varchar(255);not null" json:"name"`
	Slug        string            `gorm:"type:varchar(100);not null;uniqueIndex:idx_channels_workspace_slug" json:"slug"`
	Description string            `gorm:"type:text" json:"description"`
	Type        ChannelType       `gorm:"type:varchar(20);not null;default:'public';index" json:"type"`
	Settings    datatypes.JSONMap `json:"settings"`
	IsArchived  bool              `gorm:"not null;default:false;index" json:"is_archived"`
	ArchivedAt  *time.Time        `json:"archived_at"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`

	// Relations
	Workspace Workspace       `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	Creator   User            `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Members   []ChannelMember `gorm:"foreignKey:ChannelID" json:"members,omitempty"`
	Messages  []Message       `gorm:"foreignKey:ChannelID" json:"messages,omitempty"`
}

func (ch *Channel) BeforeCreate(tx *gorm.DB) error {
	if ch.UUID == "" {
		ch.UUID = uuid.NewString()
	}
	return nil
}
