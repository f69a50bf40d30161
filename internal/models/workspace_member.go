package models

import "time"

type WorkspaceRole string

const (
	RoleOwner  WorkspaceRole = "owner"
	RoleAdmin  WorkspaceRole = "admin"
	RoleMember WorkspaceRole = "member"
	RoleGuest  WorkspaceRole = "guest"
)

// ValidWorkspaceRole reports whether role is one of the closed set.
func ValidWorkspaceRole(role WorkspaceRole) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleMember, RoleGuest:
		return true
	}
	return false
}

// CanManageWorkspace reports whether the role may update the workspace and
// manage its members.
func (r WorkspaceRole) CanManageWorkspace() bool {
	return r == RoleOwner || r == RoleAdmin
}

type WorkspaceMember struct {
	WorkspaceID uint64        `gorm:"primarykey" json:"workspace_id"`
	UserID      uint64        `gorm:"primarykey" json:"user_id"`
	Role        WorkspaceRole `gorm:"type:varchar(20);not null" json:"role"`
	JoinedAt    time.Time     `json:"joined_at"`
	LastSeenAt  *time.Time    `json:"last_seen_at"`
	IsActive    bool          `gorm:"not null;default:true" json:"is_active"`

	// Relations
	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
