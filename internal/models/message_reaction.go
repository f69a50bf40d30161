package models

import "time"

// MessageReaction rows are created and destroyed, never updated. A user may
// react with a given emoji at most once per message.
type MessageReaction struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	MessageID uint64    `gorm:"not null;uniqueIndex:idx_reactions_message_user_emoji" json:"message_id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_reactions_message_user_emoji" json:"user_id"`
	Emoji     string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_reactions_message_user_emoji" json:"emoji"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Message Message `gorm:"foreignKey:MessageID" json:"message,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
