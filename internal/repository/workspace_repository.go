package repository

import (
	"errors"

	"github.com/teamspace/collab-api/internal/models"
	"gorm.io/gorm"
)

// GormWorkspaceRepository is a GORM implementation of WorkspaceRepository
type GormWorkspaceRepository struct {
	db *gorm.DB
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(db *gorm.DB) WorkspaceRepository {
	return &GormWorkspaceRepository{db: db}
}

// CreateWithOwner creates a workspace and its owner membership in one transaction
func (r *GormWorkspaceRepository) CreateWithOwner(ws *models.Workspace, owner *models.WorkspaceMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ws).Error; err != nil {
			return err
		}

		owner.WorkspaceID = ws.ID
		return tx.Create(owner).Error
	})
}

// FindByID finds an active workspace by ID
func (r *GormWorkspaceRepository) FindByID(id uint64) (*models.Workspace, error) {
	var ws models.Workspace
	if err := r.db.First(&ws, id).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

// FindBySlug finds an active workspace by slug
func (r *GormWorkspaceRepository) FindBySlug(slug string) (*models.Workspace, error) {
	var ws models.Workspace
	if err := r.db.Where("slug = ?", slug).First(&ws).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

// FindDeletedByID finds a soft-deleted workspace by ID
func (r *GormWorkspaceRepository) FindDeletedByID(id uint64) (*models.Workspace, error) {
	var ws models.Workspace
	err := r.db.Unscoped().
		Where("id = ? AND deleted_at IS NOT NULL", id).
		First(&ws).Error
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

// Update updates a workspace
func (r *GormWorkspaceRepository) Update(ws *models.Workspace) error {
	return r.db.Save(ws).Error
}

// Delete soft deletes a workspace
func (r *GormWorkspaceRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Workspace{}, id).Error
}

// Restore clears the soft-delete marker
func (r *GormWorkspaceRepository) Restore(id uint64) error {
	return r.db.Unscoped().
		Model(&models.Workspace{}).
		Where("id = ?", id).
		Update("deleted_at", nil).Error
}

// ListForUser lists workspaces the user is a member of, newest first
func (r *GormWorkspaceRepository) ListForUser(userID uint64) ([]models.Workspace, error) {
	var workspaces []models.Workspace
	err := r.db.
		Joins("JOIN workspace_members ON workspace_members.workspace_id = workspaces.id").
		Where("workspace_members.user_id = ?", userID).
		Preload("Owner").
		Order("workspaces.created_at DESC").
		Find(&workspaces).Error
	if err != nil {
		return nil, err
	}
	return workspaces, nil
}

// Counts returns channel/member counts for the given workspaces
func (r *GormWorkspaceRepository) Counts(workspaceIDs []uint64) (map[uint64]WorkspaceCounts, error) {
	counts := make(map[uint64]WorkspaceCounts, len(workspaceIDs))
	if len(workspaceIDs) == 0 {
		return counts, nil
	}

	type row struct {
		WorkspaceID uint64
		N           int64
	}

	var channelRows []row
	err := r.db.Model(&models.Channel{}).
		Select("workspace_id, COUNT(*) AS n").
		Where("workspace_id IN ?", workspaceIDs).
		Group("workspace_id").
		Scan(&channelRows).Error
	if err != nil {
		return nil, err
	}
	for _, cr := range channelRows {
		c := counts[cr.WorkspaceID]
		c.Channels = cr.N
		counts[cr.WorkspaceID] = c
	}

	var memberRows []row
	err = r.db.Model(&models.WorkspaceMember{}).
		Select("workspace_id, COUNT(*) AS n").
		Where("workspace_id IN ?", workspaceIDs).
		Group("workspace_id").
		Scan(&memberRows).Error
	if err != nil {
		return nil, err
	}
	for _, mr := range memberRows {
		c := counts[mr.WorkspaceID]
		c.Members = mr.N
		counts[mr.WorkspaceID] = c
	}

	return counts, nil
}

// UpsertMember adds a member or updates the role of an existing one.
// Re-adding an existing member never resets joined_at.
func (r *GormWorkspaceRepository) UpsertMember(member *models.WorkspaceMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.WorkspaceMember
		err := tx.Where("workspace_id = ? AND user_id = ?", member.WorkspaceID, member.UserID).
			First(&existing).Error
		if err == nil {
			return tx.Model(&existing).
				Where("workspace_id = ? AND user_id = ?", member.WorkspaceID, member.UserID).
				Updates(map[string]interface{}{
					"role":      member.Role,
					"is_active": member.IsActive,
				}).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Create(member).Error
	})
}

// RemoveMember hard deletes a membership row
func (r *GormWorkspaceRepository) RemoveMember(workspaceID, userID uint64) (bool, error) {
	res := r.db.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Delete(&models.WorkspaceMember{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FindMember finds a specific workspace member
func (r *GormWorkspaceRepository) FindMember(workspaceID, userID uint64) (*models.WorkspaceMember, error) {
	var member models.WorkspaceMember
	err := r.db.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all members of a workspace
func (r *GormWorkspaceRepository) ListMembers(workspaceID uint64) ([]models.WorkspaceMember, error) {
	var members []models.WorkspaceMember
	err := r.db.Preload("User").
		Where("workspace_id = ?", workspaceID).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}
