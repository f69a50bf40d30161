package repository

import (
	"github.com/teamspace/collab-api/internal/database"
	"github.com/teamspace/collab-api/internal/models"
	"gorm.io/gorm"
)

// GormMessageRepository is a GORM implementation of MessageRepository
type GormMessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &GormMessageRepository{db: db}
}

// Create creates a new message
func (r *GormMessageRepository) Create(msg *models.Message) error {
	return r.db.Create(msg).Error
}

// FindByID finds a message by ID with optional preloading
func (r *GormMessageRepository) FindByID(id uint64, preload ...string) (*models.Message, error) {
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}

	var msg models.Message
	if err := query.First(&msg, id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// Update updates a message
func (r *GormMessageRepository) Update(msg *models.Message) error {
	return r.db.Save(msg).Error
}

// Delete soft deletes a message
func (r *GormMessageRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Message{}, id).Error
}

// ListRoots lists root messages newest first, paginated
func (r *GormMessageRepository) ListRoots(filter MessageFilter) ([]models.Message, int64, error) {
	query := r.db.Model(&models.Message{}).
		Where("channel_id = ? AND parent_id IS NULL", filter.ChannelID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []models.Message
	err := query.
		Preload("User").
		Preload("Reactions").
		Order("created_at DESC, id DESC").
		Scopes(database.Paginate(filter.Pagination)).
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// ListThread lists direct replies oldest first
func (r *GormMessageRepository) ListThread(parentID uint64) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.
		Preload("User").
		Preload("Reactions").
		Where("parent_id = ?", parentID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// ListPinned lists pinned messages of a channel, newest pin first
func (r *GormMessageRepository) ListPinned(channelID uint64) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.
		Preload("User").
		Where("channel_id = ? AND is_pinned = ?", channelID, true).
		Order("pinned_at DESC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// AddReaction inserts a reaction row
func (r *GormMessageRepository) AddReaction(reaction *models.MessageReaction) error {
	return r.db.Create(reaction).Error
}

// RemoveReaction deletes a reaction row
func (r *GormMessageRepository) RemoveReaction(messageID, userID uint64, emoji string) (bool, error) {
	res := r.db.Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
		Delete(&models.MessageReaction{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FindReaction finds a specific reaction row
func (r *GormMessageRepository) FindReaction(messageID, userID uint64, emoji string) (*models.MessageReaction, error) {
	var reaction models.MessageReaction
	err := r.db.Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
		First(&reaction).Error
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}
