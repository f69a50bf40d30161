package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Workspace struct {
	ID          uint64            `gorm:"primarykey" json:"id"`
	UUID        string            `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	OwnerID     uint64            `gorm:"not null;index" json:"owner_id"`
	Name        string            `gorm:"type:varchar(255);not null" json:"name"`
	Slug        string            `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Description string            `gorm:"type:text" json:"description"`
	Settings    datatypes.JSONMap `json:"settings"`
	IsActive    bool              `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	DeletedAt   gorm.DeletedAt    `gorm:"index" json:"-"`

	// Relations
	Owner    User              `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Members  []WorkspaceMember `gorm:"foreignKey:WorkspaceID" json:"members,omitempty"`
	Channels []Channel         `gorm:"foreignKey:WorkspaceID" json:"channels,omitempty"`
}

func (w *Workspace) BeforeCreate(tx *gorm.DB) error {
	if w.UUID == "" {
		w.UUID = uuid.NewString()
	}
	return nil
}
