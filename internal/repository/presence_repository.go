package repository

import (
	"errors"
	"time"

	"github.com/teamspace/collab-api/internal/models"
	"gorm.io/gorm"
)

// GormPresenceRepository is a GORM implementation of PresenceRepository
type GormPresenceRepository struct {
	db *gorm.DB
}

// NewPresenceRepository creates a new PresenceRepository
func NewPresenceRepository(db *gorm.DB) PresenceRepository {
	return &GormPresenceRepository{db: db}
}

func scopeQuery(db *gorm.DB, userID, workspaceID uint64, channelID *uint64) *gorm.DB {
	q := db.Where("user_id = ? AND workspace_id = ?", userID, workspaceID)
	if channelID == nil {
		return q.Where("channel_id IS NULL")
	}
	return q.Where("channel_id = ?", *channelID)
}

// Upsert writes the presence row for the exact (user, workspace, channel)
// scope. Concurrent writers race last-writer-wins, which presence tolerates.
func (r *GormPresenceRepository) Upsert(p *models.UserPresence) error {
	var existing models.UserPresence
	err := scopeQuery(r.db, p.UserID, p.WorkspaceID, p.ChannelID).
		First(&existing).Error
	if err == nil {
		return r.db.Model(&existing).Updates(map[string]interface{}{
			"status":           p.Status,
			"last_activity_at": p.LastActivityAt,
			"metadata":         p.Metadata,
		}).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return r.db.Create(p).Error
}

// Find returns the presence row for the exact scope
func (r *GormPresenceRepository) Find(userID, workspaceID uint64, channelID *uint64) (*models.UserPresence, error) {
	var p models.UserPresence
	err := scopeQuery(r.db, userID, workspaceID, channelID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Touch refreshes last activity on all of the user's rows in the workspace
func (r *GormPresenceRepository) Touch(userID, workspaceID uint64, at time.Time) error {
	return r.db.Model(&models.UserPresence{}).
		Where("user_id = ? AND workspace_id = ?", userID, workspaceID).
		Update("last_activity_at", at).Error
}

// ListActive lists rows with activity since the given instant
func (r *GormPresenceRepository) ListActive(workspaceID uint64, channelID *uint64, since time.Time) ([]models.UserPresence, error) {
	query := r.db.
		Preload("User").
		Where("workspace_id = ? AND last_activity_at >= ?", workspaceID, since)
	if channelID != nil {
		query = query.Where("channel_id = ?", *channelID)
	}

	var rows []models.UserPresence
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByStatus groups active workspace-scope rows by stored status
func (r *GormPresenceRepository) CountByStatus(workspaceID uint64, since time.Time) (map[models.PresenceStatus]int64, error) {
	type row struct {
		Status models.PresenceStatus
		N      int64
	}

	var rows []row
	err := r.db.Model(&models.UserPresence{}).
		Select("status, COUNT(*) AS n").
		Where("workspace_id = ? AND channel_id IS NULL AND last_activity_at >= ?", workspaceID, since).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.PresenceStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.N
	}
	return counts, nil
}

// DeleteStale removes presence rows with no activity since the cutoff
func (r *GormPresenceRepository) DeleteStale(before time.Time) (int64, error) {
	res := r.db.Where("last_activity_at < ?", before).
		Delete(&models.UserPresence{})
	return res.RowsAffected, res.Error
}

// UpsertTyping writes the typing row keyed by (channel, user)
func (r *GormPresenceRepository) UpsertTyping(t *models.TypingIndicator) error {
	var existing models.TypingIndicator
	err := r.db.Where("channel_id = ? AND user_id = ?", t.ChannelID, t.UserID).
		First(&existing).Error
	if err == nil {
		return r.db.Model(&existing).Updates(map[string]interface{}{
			"started_at": t.StartedAt,
			"expires_at": t.ExpiresAt,
		}).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return r.db.Create(t).Error
}

// ListTyping lists typing rows not yet expired at the given instant
func (r *GormPresenceRepository) ListTyping(channelID uint64, at time.Time) ([]models.TypingIndicator, error) {
	var rows []models.TypingIndicator
	err := r.db.
		Preload("User").
		Where("channel_id = ? AND expires_at > ?", channelID, at).
		Order("started_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteExpiredTyping removes typing rows expired at the given instant
func (r *GormPresenceRepository) DeleteExpiredTyping(at time.Time) (int64, error) {
	res := r.db.Where("expires_at <= ?", at).
		Delete(&models.TypingIndicator{})
	return res.RowsAffected, res.Error
}
