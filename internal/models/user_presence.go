package models

import (
	"time"

	"gorm.io/datatypes"
)

type PresenceStatus string

const (
	StatusOnline  PresenceStatus = "online"
	StatusAway    PresenceStatus = "away"
	StatusBusy    PresenceStatus = "busy"
	StatusOffline PresenceStatus = "offline"
)

func ValidPresenceStatus(s PresenceStatus) bool {
	switch s {
	case StatusOnline, StatusAway, StatusBusy, StatusOffline:
		return true
	}
	return false
}

// UserPresence holds one row per (user, workspace) at workspace scope
// (ChannelID nil) and optionally additional channel-scope rows. Staleness is
// a read-time predicate: the stored status is never trusted on its own.
type UserPresence struct {
	ID             uint64            `gorm:"primarykey" json:"id"`
	UserID         uint64            `gorm:"not null;uniqueIndex:idx_presence_user_workspace_channel" json:"user_id"`
	WorkspaceID    uint64            `gorm:"not null;uniqueIndex:idx_presence_user_workspace_channel;index:idx_presence_workspace_status" json:"workspace_id"`
	ChannelID      *uint64           `gorm:"uniqueIndex:idx_presence_user_workspace_channel" json:"channel_id"`
	Status         PresenceStatus    `gorm:"type:varchar(20);not null;index:idx_presence_workspace_status" json:"status"`
	LastActivityAt time.Time         `gorm:"not null;index" json:"last_activity_at"`
	Metadata       datatypes.JSONMap `json:"metadata"`

	// Relations
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
}

// Stale reports whether the record has outlived the liveness window at the
// given instant.
func (p *UserPresence) Stale(at time.Time, window time.Duration) bool {
	return at.Sub(p.LastActivityAt) > window
}

// EffectiveStatus applies the staleness rule at the given instant.
func (p *UserPresence) EffectiveStatus(at time.Time, window time.Duration) PresenceStatus {
	if p.Stale(at, window) {
		return StatusOffline
	}
	return p.Status
}
