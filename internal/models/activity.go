package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubjectKind is the closed set of entity kinds an activity can point at.
type SubjectKind string

const (
	SubjectWorkspace SubjectKind = "workspace"
	SubjectChannel   SubjectKind = "channel"
	SubjectMessage   SubjectKind = "message"
	SubjectUser      SubjectKind = "user"
)

// Subject is a typed reference to any loggable entity.
type Subject struct {
	Kind SubjectKind `json:"kind"`
	ID   uint64      `json:"id"`
}

// Activity is an append-only audit record. Rows are never mutated or deleted
// by normal flows.
type Activity struct {
	ID          uint64            `gorm:"primarykey" json:"id"`
	UUID        string            `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	WorkspaceID uint64            `gorm:"not null;index:idx_activities_workspace_created" json:"workspace_id"`
	UserID      *uint64           `gorm:"index" json:"user_id"`
	Action      string            `gorm:"type:varchar(100);not null;index" json:"action"`
	SubjectKind SubjectKind       `gorm:"type:varchar(20);not null;index:idx_activities_subject" json:"subject_kind"`
	SubjectID   uint64            `gorm:"not null;index:idx_activities_subject" json:"subject_id"`
	Properties  datatypes.JSONMap `json:"properties"`
	CreatedAt   time.Time         `gorm:"index:idx_activities_workspace_created" json:"created_at"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == "" {
		a.UUID = uuid.NewString()
	}
	return nil
}
