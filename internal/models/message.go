package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ContentType string

const (
	ContentText   ContentType = "text"
	ContentFile   ContentType = "file"
	ContentSystem ContentType = "system"
)

func ValidContentType(t ContentType) bool {
	switch t {
	case ContentText, ContentFile, ContentSystem:
		return true
	}
	return false
}

// Message rows are soft deleted so replies and reactions keep a valid
// parent reference. Threads are one level deep: ParentID always points at
// a root message.
type Message struct {
	ID          uint64            `gorm:"primarykey" json:"id"`
	UUID        string            `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	ChannelID   uint64            `gorm:"not null;index:idx_messages_channel_created" json:"channel_id"`
	UserID      uint64            `gorm:"not null;index" json:"user_id"`
	ParentID    *uint64           `gorm:"index" json:"parent_id"`
	Content     string            `gorm:"type:text;not null" json:"content"`
	ContentType ContentType       `gorm:"type:varchar(20);not null;default:'text'" json:"content_type"`
	Metadata    datatypes.JSONMap `json:"metadata"`
	EditedAt    *time.Time        `json:"edited_at"`
	IsPinned    bool              `gorm:"not null;default:false;index" json:"is_pinned"`
	PinnedAt    *time.Time        `json:"pinned_at"`
	PinnedBy    *uint64           `json:"pinned_by"`
	CreatedAt   time.Time         `gorm:"index:idx_messages_channel_created" json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	DeletedAt   gorm.DeletedAt    `gorm:"index" json:"-"`

	// Relations
	Channel   Channel           `gorm:"foreignKey:ChannelID" json:"channel,omitempty"`
	User      User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Parent    *Message          `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Replies   []Message         `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
	Reactions []MessageReaction `gorm:"foreignKey:MessageID" json:"reactions,omitempty"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.UUID == "" {
		m.UUID = uuid.NewString()
	}
	return nil
}

// IsRoot reports whether the message starts a thread.
func (m *Message) IsRoot() bool {
	return m.ParentID == nil
}
