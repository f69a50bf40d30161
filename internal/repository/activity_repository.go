package repository

import (
	"github.com/teamspace/collab-api/internal/models"
	"gorm.io/gorm"
)

// GormActivityRepository is a GORM implementation of ActivityRepository
type GormActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &GormActivityRepository{db: db}
}

// Create appends an activity row
func (r *GormActivityRepository) Create(a *models.Activity) error {
	return r.db.Create(a).Error
}

// ListByWorkspace lists recent workspace activities, newest first
func (r *GormActivityRepository) ListByWorkspace(workspaceID uint64, limit int) ([]models.Activity, error) {
	var activities []models.Activity
	err := r.db.Where("workspace_id = ?", workspaceID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// ListByUser lists recent activities performed by a user, newest first
func (r *GormActivityRepository) ListByUser(userID uint64, limit int) ([]models.Activity, error) {
	var activities []models.Activity
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}
