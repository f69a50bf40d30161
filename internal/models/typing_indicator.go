package models

import "time"

// TypingIndicator is a purely ephemeral signal. Expired rows are filtered at
// read time; the periodic sweep only reclaims storage.
type TypingIndicator struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	ChannelID uint64    `gorm:"not null;uniqueIndex:idx_typing_channel_user" json:"channel_id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_typing_channel_user" json:"user_id"`
	StartedAt time.Time `gorm:"not null" json:"started_at"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`

	// Relations
	Channel Channel `gorm:"foreignKey:ChannelID" json:"channel,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (t *TypingIndicator) Expired(at time.Time) bool {
	return !at.Before(t.ExpiresAt)
}
