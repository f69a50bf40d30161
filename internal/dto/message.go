package dto

import (
	"time"

	"github.com/teamspace/collab-api/internal/models"
)

// ReactionDTO represents a reaction grouped by emoji
type ReactionDTO struct {
	Emoji   string   `json:"emoji"`
	Count   int      `json:"count"`
	UserIDs []uint64 `json:"user_ids"`
}

// MessageDTO represents a message in API responses
type MessageDTO struct {
	ID          uint64                 `json:"id"`
	UUID        string                 `json:"uuid"`
	ChannelID   uint64                 `json:"channel_id"`
	UserID      uint64                 `json:"user_id"`
	ParentID    *uint64                `json:"parent_id"`
	Content     string                 `json:"content"`
	ContentType models.ContentType     `json:"content_type"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	EditedAt    *time.Time             `json:"edited_at"`
	IsPinned    bool                   `json:"is_pinned"`
	PinnedAt    *time.Time             `json:"pinned_at"`
	PinnedBy    *uint64                `json:"pinned_by"`
	CreatedAt   time.Time              `json:"created_at"`
	User        *UserDTO               `json:"user,omitempty"`
	Reactions   []ReactionDTO          `json:"reactions,omitempty"`
}

// MessageListResponse represents a paginated page of root messages
type MessageListResponse struct {
	Messages   []MessageDTO `json:"messages"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalCount int64        `json:"total_count"`
	TotalPages int          `json:"total_pages"`
}

// ThreadResponse represents a thread root together with its replies
type ThreadResponse struct {
	Root    MessageDTO   `json:"root"`
	Replies []MessageDTO `json:"replies"`
}

// ToMessageDTO converts a Message model to MessageDTO
func ToMessageDTO(msg models.Message) MessageDTO {
	dto := MessageDTO{
		ID:          msg.ID,
		UUID:        msg.UUID,
		ChannelID:   msg.ChannelID,
		UserID:      msg.UserID,
		ParentID:    msg.ParentID,
		Content:     msg.Content,
		ContentType: msg.ContentType,
		Metadata:    msg.Metadata,
		EditedAt:    msg.EditedAt,
		IsPinned:    msg.IsPinned,
		PinnedAt:    msg.PinnedAt,
		PinnedBy:    msg.PinnedBy,
		CreatedAt:   msg.CreatedAt,
	}

	// Include author if preloaded
	if msg.User.ID != 0 {
		user := ToUserDTO(msg.User)
		dto.User = &user
	}

	if len(msg.Reactions) > 0 {
		dto.Reactions = groupReactions(msg.Reactions)
	}

	return dto
}

// ToMessageDTOs converts a slice of messages
func ToMessageDTOs(messages []models.Message) []MessageDTO {
	dtos := make([]MessageDTO, len(messages))
	for i, msg := range messages {
		dtos[i] = ToMessageDTO(msg)
	}
	return dtos
}

// ToMessageListResponse builds a paginated message page
func ToMessageListResponse(messages []models.Message, page, pageSize int, total int64) MessageListResponse {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return MessageListResponse{
		Messages:   ToMessageDTOs(messages),
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: totalPages,
	}
}

// groupReactions collapses raw reaction rows into per-emoji groups,
// preserving first-seen emoji order.
func groupReactions(reactions []models.MessageReaction) []ReactionDTO {
	index := make(map[string]int, len(reactions))
	grouped := make([]ReactionDTO, 0, len(reactions))
	for _, r := range reactions {
		i, ok := index[r.Emoji]
		if !ok {
			i = len(grouped)
			index[r.Emoji] = i
			grouped = append(grouped, ReactionDTO{Emoji: r.Emoji})
		}
		grouped[i].Count++
		grouped[i].UserIDs = append(grouped[i].UserIDs, r.UserID)
	}
	return grouped
}
