package repository

import (
	"errors"

	"github.com/teamspace/collab-api/internal/models"
	"gorm.io/gorm"
)

// GormChannelRepository is a GORM implementation of ChannelRepository
type GormChannelRepository struct {
	db *gorm.DB
}

// NewChannelRepository creates a new ChannelRepository
func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &GormChannelRepository{db: db}
}

// CreateWithCreator creates a channel and its creator membership in one
// transaction. Additional initial members (direct channels) join atomically.
func (r *GormChannelRepository) CreateWithCreator(ch *models.Channel, creator *models.ChannelMember, extra ...*models.ChannelMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ch).Error; err != nil {
			return err
		}

		creator.ChannelID = ch.ID
		if err := tx.Create(creator).Error; err != nil {
			return err
		}

		for _, m := range extra {
			m.ChannelID = ch.ID
			if err := tx.Create(m).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// FindByID finds a channel by ID with optional preloading
func (r *GormChannelRepository) FindByID(id uint64, preload ...string) (*models.Channel, error) {
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}

	var ch models.Channel
	if err := query.First(&ch, id).Error; err != nil {
		return nil, err
	}
	return &ch, nil
}

// FindBySlug finds a channel by workspace-scoped slug
func (r *GormChannelRepository) FindBySlug(workspaceID uint64, slug string) (*models.Channel, error) {
	var ch models.Channel
	err := r.db.Where("workspace_id = ? AND slug = ?", workspaceID, slug).
		First(&ch).Error
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// Update updates a channel
func (r *GormChannelRepository) Update(ch *models.Channel) error {
	return r.db.Save(ch).Error
}

// DeleteCascade hard deletes a channel and everything under it
func (r *GormChannelRepository) DeleteCascade(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		messageIDs := tx.Model(&models.Message{}).
			Unscoped().
			Select("id").
			Where("channel_id = ?", id)

		if err := tx.Where("message_id IN (?)", messageIDs).
			Delete(&models.MessageReaction{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().
			Where("channel_id = ?", id).
			Delete(&models.Message{}).Error; err != nil {
			return err
		}

		if err := tx.Where("channel_id = ?", id).
			Delete(&models.ChannelMember{}).Error; err != nil {
			return err
		}

		if err := tx.Where("channel_id = ?", id).
			Delete(&models.TypingIndicator{}).Error; err != nil {
			return err
		}

		if err := tx.Where("channel_id = ?", id).
			Delete(&models.UserPresence{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Channel{}, id).Error
	})
}

// ListByWorkspace lists channels newest first
func (r *GormChannelRepository) ListByWorkspace(workspaceID uint64, includeArchived bool) ([]models.Channel, error) {
	query := r.db.Where("workspace_id = ?", workspaceID)
	if !includeArchived {
		query = query.Where("is_archived = ?", false)
	}

	var channels []models.Channel
	if err := query.Order("created_at DESC").Find(&channels).Error; err != nil {
		return nil, err
	}
	return channels, nil
}

// UpsertMember adds a channel member or updates an existing row
func (r *GormChannelRepository) UpsertMember(member *models.ChannelMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.ChannelMember
		err := tx.Where("channel_id = ? AND user_id = ?", member.ChannelID, member.UserID).
			First(&existing).Error
		if err == nil {
			return tx.Model(&existing).
				Where("channel_id = ? AND user_id = ?", member.ChannelID, member.UserID).
				Updates(map[string]interface{}{
					"role":                    member.Role,
					"notification_preference": member.NotificationPreference,
				}).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Create(member).Error
	})
}

// RemoveMember hard deletes a channel membership
func (r *GormChannelRepository) RemoveMember(channelID, userID uint64) (bool, error) {
	res := r.db.Where("channel_id = ? AND user_id = ?", channelID, userID).
		Delete(&models.ChannelMember{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FindMember finds a specific channel member
func (r *GormChannelRepository) FindMember(channelID, userID uint64) (*models.ChannelMember, error) {
	var member models.ChannelMember
	err := r.db.Where("channel_id = ? AND user_id = ?", channelID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all members of a channel
func (r *GormChannelRepository) ListMembers(channelID uint64) ([]models.ChannelMember, error) {
	var members []models.ChannelMember
	err := r.db.Preload("User").
		Where("channel_id = ?", channelID).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// MemberChannelIDs returns channel IDs in the workspace the user belongs to
func (r *GormChannelRepository) MemberChannelIDs(workspaceID, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&models.ChannelMember{}).
		Joins("JOIN channels ON channels.id = channel_members.channel_id").
		Where("channels.workspace_id = ? AND channel_members.user_id = ?", workspaceID, userID).
		Pluck("channel_members.channel_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
