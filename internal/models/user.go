package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Username     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	DisplayName  string         `gorm:"type:varchar(255)" json:"display_name"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	OwnedWorkspaces []Workspace       `gorm:"foreignKey:OwnerID" json:"-"`
	Memberships     []WorkspaceMember `gorm:"foreignKey:UserID" json:"-"`
	Messages        []Message         `gorm:"foreignKey:UserID" json:"-"`
}
