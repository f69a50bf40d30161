package dto

import (
	"time"

	"github.com/teamspace/collab-api/internal/models"
	"github.com/teamspace/collab-api/internal/repository"
)

// WorkspaceDTO represents a workspace in API responses
type WorkspaceDTO struct {
	ID          uint64                 `json:"id"`
	UUID        string                 `json:"uuid"`
	OwnerID     uint64                 `json:"owner_id"`
	Name        string                 `json:"name"`
	Slug        string                 `json:"slug"`
	Description string                 `json:"description"`
	Settings    map[string]interface{} `json:"settings,omitempty"`
	IsActive    bool                   `json:"is_active"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// WorkspaceListItemDTO represents a workspace in list responses, with the
// caller's role and aggregate counts
type WorkspaceListItemDTO struct {
	WorkspaceDTO
	YourRole     models.WorkspaceRole `json:"your_role"`
	ChannelCount int64                `json:"channel_count"`
	MemberCount  int64                `json:"member_count"`
}

// WorkspaceMemberDTO represents a member in a workspace
type WorkspaceMemberDTO struct {
	User       UserDTO              `json:"user"`
	Role       models.WorkspaceRole `json:"role"`
	JoinedAt   time.Time            `json:"joined_at"`
	LastSeenAt *time.Time           `json:"last_seen_at"`
}

// WorkspaceDetailDTO represents detailed workspace information
type WorkspaceDetailDTO struct {
	WorkspaceDTO
	Members  []WorkspaceMemberDTO `json:"members"`
	YourRole models.WorkspaceRole `json:"your_role"`
}

// ToWorkspaceDTO converts a Workspace model to WorkspaceDTO
func ToWorkspaceDTO(ws models.Workspace) WorkspaceDTO {
	return WorkspaceDTO{
		ID:          ws.ID,
		UUID:        ws.UUID,
		OwnerID:     ws.OwnerID,
		Name:        ws.Name,
		Slug:        ws.Slug,
		Description: ws.Description,
		Settings:    ws.Settings,
		IsActive:    ws.IsActive,
		CreatedAt:   ws.CreatedAt,
		UpdatedAt:   ws.UpdatedAt,
	}
}

// ToWorkspaceListItemDTO converts a workspace with role and counts to a
// list item
func ToWorkspaceListItemDTO(ws models.Workspace, role models.WorkspaceRole, counts repository.WorkspaceCounts) WorkspaceListItemDTO {
	return WorkspaceListItemDTO{
		WorkspaceDTO: ToWorkspaceDTO(ws),
		YourRole:     role,
		ChannelCount: counts.Channels,
		MemberCount:  counts.Members,
	}
}

// ToWorkspaceMemberDTO converts a member to DTO
func ToWorkspaceMemberDTO(member models.WorkspaceMember) WorkspaceMemberDTO {
	return WorkspaceMemberDTO{
		User:       ToUserDTO(member.User),
		Role:       member.Role,
		JoinedAt:   member.JoinedAt,
		LastSeenAt: member.LastSeenAt,
	}
}

// ToWorkspaceDetailDTO converts a workspace with members to a detailed DTO
func ToWorkspaceDetailDTO(ws models.Workspace, members []models.WorkspaceMember, yourRole models.WorkspaceRole) WorkspaceDetailDTO {
	memberDTOs := make([]WorkspaceMemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = ToWorkspaceMemberDTO(member)
	}

	return WorkspaceDetailDTO{
		WorkspaceDTO: ToWorkspaceDTO(ws),
		Members:      memberDTOs,
		YourRole:     yourRole,
	}
}
