package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/teamspace/collab-api/internal/constants"
	apierrors "github.com/teamspace/collab-api/internal/errors"
	"github.com/teamspace/collab-api/internal/events"
	"github.com/teamspace/collab-api/internal/models"
	"github.com/teamspace/collab-api/internal/policy"
	"github.com/teamspace/collab-api/internal/repository"
	"github.com/teamspace/collab-api/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrMessageNotFound    = apierrors.NewNotFound("message not found")
	ErrEmptyMessage       = apierrors.NewInvalid("message content cannot be empty")
	ErrMessageTooLong     = apierrors.NewInvalid(fmt.Sprintf("message content exceeds %d characters", constants.MaxMessageLength))
	ErrInvalidContentType = apierrors.NewInvalid("invalid content type")
	ErrInvalidEmoji       = apierrors.NewInvalid("invalid emoji")
	ErrMessageForbidden   = apierrors.NewForbidden("you do not have permission to perform this action on the message")
	ErrChannelArchived    = apierrors.NewInvalidState("channel is archived")
	ErrParentWrongChannel = apierrors.NewInvalidState("parent message belongs to a different channel")
	ErrDuplicateReaction  = apierrors.NewConflict("reaction already exists")
)

// MessageService owns messages, threads, reactions and pinning.
type MessageService struct {
	msgRepo repository.MessageRepository
	chRepo  repository.ChannelRepository
	wsRepo  repository.WorkspaceRepository
	bus     *events.Bus
	now     func() time.Time
}

// NewMessageService creates a new MessageService.
func NewMessageService(msgRepo repository.MessageRepository, chRepo repository.ChannelRepository, wsRepo repository.WorkspaceRepository, bus *events.Bus) *MessageService {
	return &MessageService{
		msgRepo: msgRepo,
		chRepo:  chRepo,
		wsRepo:  wsRepo,
		bus:     bus,
		now:     time.Now,
	}
}

// SendMessageInput represents parameters to post a message.
type SendMessageInput struct {
	Content     string
	ContentType models.ContentType
	ParentID    *uint64
	Metadata    map[string]interface{}
}

// SendMessage posts a message to a channel, optionally as a reply. Replies
// to a reply are flattened under the thread root, so threads stay one level
// deep.
func (s *MessageService) SendMessage(channelID, authorID uint64, input SendMessageInput) (*models.Message, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > constants.MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = models.ContentText
	}
	if !models.ValidContentType(contentType) {
		return nil, ErrInvalidContentType
	}

	ch, wsRole, chRole, err := s.channelWithRoles(channelID, authorID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewChannel(ch, wsRole, chRole) {
		return nil, ErrChannelAccessDenied
	}
	if !policy.CanSendMessage(ch, wsRole, chRole) {
		return nil, ErrChannelArchived
	}

	parentID := input.ParentID
	if parentID != nil {
		parent, err := s.msgRepo.FindByID(*parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrMessageNotFound
			}
			return nil, fmt.Errorf("failed to find parent message: %w", err)
		}
		if parent.ChannelID != channelID {
			return nil, ErrParentWrongChannel
		}
		// Reply to a reply attaches to the thread root instead.
		if !parent.IsRoot() {
			parentID = parent.ParentID
		}
	}

	msg := &models.Message{
		ChannelID:   channelID,
		UserID:      authorID,
		ParentID:    parentID,
		Content:     content,
		ContentType: contentType,
		Metadata:    datatypes.JSONMap(input.Metadata),
	}

	if err := s.msgRepo.Create(msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	s.publish(events.ActionMessageSent, ch.WorkspaceID, &authorID, models.Subject{Kind: models.SubjectMessage, ID: msg.ID}, map[string]interface{}{
		"channel_id": channelID,
	})

	return s.msgRepo.FindByID(msg.ID, "User")
}

// GetMessage returns a message the actor is allowed to see.
func (s *MessageService) GetMessage(messageID, actorID uint64) (*models.Message, error) {
	msg, err := s.findMessage(messageID, "User", "Reactions", "Reactions.User")
	if err != nil {
		return nil, err
	}

	ch, wsRole, chRole, err := s.channelWithRoles(msg.ChannelID, actorID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewChannel(ch, wsRole, chRole) {
		return nil, ErrChannelAccessDenied
	}

	return msg, nil
}

// UpdateMessage edits a message's content. Only the author may edit, and
// the edit is stamped with EditedAt.
func (s *MessageService) UpdateMessage(messageID, actorID uint64, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > constants.MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	msg, err := s.findMessage(messageID)
	if err != nil {
		return nil, err
	}
	if !policy.CanUpdateMessage(msg, actorID) {
		return nil, ErrMessageForbidden
	}

	now := s.now()
	msg.Content = content
	msg.EditedAt = &now

	if err := s.msgRepo.Update(msg); err != nil {
		return nil, fmt.Errorf("failed to update message: %w", err)
	}

	ch, err := s.findChannelByID(msg.ChannelID)
	if err == nil {
		s.publish(events.ActionMessageUpdated, ch.WorkspaceID, &actorID, models.Subject{Kind: models.SubjectMessage, ID: msg.ID}, nil)
	}

	return s.msgRepo.FindByID(msg.ID, "User")
}

// DeleteMessage soft deletes a message. Allowed for the author, a channel
// admin, or a workspace admin/owner; the row survives so replies and
// reactions keep a valid reference.
func (s *MessageService) DeleteMessage(messageID, actorID uint64) error {
	msg, err := s.findMessage(messageID)
	if err != nil {
		return err
	}

	ch, wsRole, chRole, err := s.channelWithRoles(msg.ChannelID, actorID)
	if err != nil {
		return err
	}
	if !policy.CanDeleteMessage(msg, actorID, chRole, wsRole) {
		return ErrMessageForbidden
	}

	if err := s.msgRepo.Delete(messageID); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	s.publish(events.ActionMessageDeleted, ch.WorkspaceID, &actorID, models.Subject{Kind: models.SubjectMessage, ID: msg.ID}, map[string]interface{}{
		"channel_id": msg.ChannelID,
	})

	return nil
}

// GetChannelMessages lists root messages of a channel, newest first.
func (s *MessageService) GetChannelMessages(channelID, actorID uint64, params utils.PaginationParams) ([]models.Message, int64, error) {
	ch, wsRole, chRole, err := s.channelWithRoles(channelID, actorID)
	if err != nil {
		return nil, 0, err
	}
	if !policy.CanViewChannel(ch, wsRole, chRole) {
		return nil, 0, ErrChannelAccessDenied
	}

	messages, total, err := s.msgRepo.ListRoots(repository.MessageFilter{
		ChannelID:  channelID,
		Pagination: params,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}

	return messages, total, nil
}

// GetThreadMessages lists the replies under a thread root, oldest first.
// Passing a reply resolves to its root's thread.
func (s *MessageService) GetThreadMessages(messageID, actorID uint64) (*models.Message, []models.Message, error) {
	msg, err := s.findMessage(messageID, "User")
	if err != nil {
		return nil, nil, err
	}

	rootID := msg.ID
	if !msg.IsRoot() {
		rootID = *msg.ParentID
	}

	root, err := s.findMessage(rootID, "User")
	if err != nil {
		return nil, nil, err
	}

	ch, wsRole, chRole, err := s.channelWithRoles(root.ChannelID, actorID)
	if err != nil {
		return nil, nil, err
	}
	if !policy.CanViewChannel(ch, wsRole, chRole) {
		return nil, nil, ErrChannelAccessDenied
	}

	replies, err := s.msgRepo.ListThread(rootID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list thread: %w", err)
	}

	return root, replies, nil
}

// AddReaction records an emoji reaction. A user may react with a given
// emoji at most once per message; a repeat is a conflict.
func (s *MessageService) AddReaction(messageID, actorID uint64, emoji string) (*models.MessageReaction, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" || len(emoji) > constants.MaxEmojiLength {
		return nil, ErrInvalidEmoji
	}

	msg, err := s.findMessage(messageID)
	if err != nil {
		return nil, err
	}

	ch, wsRole, chRole, err := s.channelWithRoles(msg.ChannelID, actorID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewChannel(ch, wsRole, chRole) {
		return nil, ErrChannelAccessDenied
	}

	reaction := &models.MessageReaction{
		MessageID: messageID,
		UserID:    actorID,
		Emoji:     emoji,
	}

	if err := s.msgRepo.AddReaction(reaction); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateReaction
		}
		return nil, fmt.Errorf("failed to add reaction: %w", err)
	}

	s.publish(events.ActionReactionAdded, ch.WorkspaceID, &actorID, models.Subject{Kind: models.SubjectMessage, ID: messageID}, map[string]interface{}{
		"emoji": emoji,
	})

	return reaction, nil
}

// RemoveReaction removes the actor's own reaction. Removing a reaction
// that does not exist reports false without error.
func (s *MessageService) RemoveReaction(messageID, actorID uint64, emoji string) (bool, error) {
	msg, err := s.findMessage(messageID)
	if err != nil {
		return false, err
	}

	removed, err := s.msgRepo.RemoveReaction(messageID, actorID, emoji)
	if err != nil {
		return false, fmt.Errorf("failed to remove reaction: %w", err)
	}

	if removed {
		if ch, err := s.findChannelByID(msg.ChannelID); err == nil {
			s.publish(events.ActionReactionRemoved, ch.WorkspaceID, &actorID, models.Subject{Kind: models.SubjectMessage, ID: messageID}, map[string]interface{}{
				"emoji": emoji,
			})
		}
	}

	return removed, nil
}

// PinMessage pins a message to its channel. Channel admins only. Pinning
// an already pinned message overwrites PinnedBy and PinnedAt.
func (s *MessageService) PinMessage(messageID, actorID uint64) (*models.Message, error) {
	return s.setPinned(messageID, actorID, true)
}

// UnpinMessage clears the pin. Same permissions as PinMessage; unpinning a
// message that is not pinned is a no-op.
func (s *MessageService) UnpinMessage(messageID, actorID uint64) (*models.Message, error) {
	return s.setPinned(messageID, actorID, false)
}

func (s *MessageService) setPinned(messageID, actorID uint64, pinned bool) (*models.Message, error) {
	msg, err := s.findMessage(messageID)
	if err != nil {
		return nil, err
	}

	ch, wsRole, chRole, err := s.channelWithRoles(msg.ChannelID, actorID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewChannel(ch, wsRole, chRole) {
		return nil, ErrChannelAccessDenied
	}
	if !policy.CanPinMessage(chRole) {
		return nil, ErrMessageForbidden
	}

	// Unpinning a message that is not pinned is a no-op. Re-pinning falls
	// through so the pin attribution moves to the latest actor.
	if !pinned && !msg.IsPinned {
		return msg, nil
	}

	action := events.ActionMessagePinned
	if pinned {
		now := s.now()
		msg.IsPinned = true
		msg.PinnedAt = &now
		msg.PinnedBy = &actorID
	} else {
		action = events.ActionMessageUnpinned
		msg.IsPinned = false
		msg.PinnedAt = nil
		msg.PinnedBy = nil
	}

	if err := s.msgRepo.Update(msg); err != nil {
		return nil, fmt.Errorf("failed to update pin state: %w", err)
	}

	s.publish(action, ch.WorkspaceID, &actorID, models.Subject{Kind: models.SubjectMessage, ID: msg.ID}, map[string]interface{}{
		"channel_id": msg.ChannelID,
	})

	return msg, nil
}

// GetPinnedMessages lists the pinned messages of a channel, newest pin
// first.
func (s *MessageService) GetPinnedMessages(channelID, actorID uint64) ([]models.Message, error) {
	ch, wsRole, chRole, err := s.channelWithRoles(channelID, actorID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewChannel(ch, wsRole, chRole) {
		return nil, ErrChannelAccessDenied
	}

	return s.msgRepo.ListPinned(channelID)
}

func (s *MessageService) findMessage(messageID uint64, preload ...string) (*models.Message, error) {
	msg, err := s.msgRepo.FindByID(messageID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to find message: %w", err)
	}
	return msg, nil
}

func (s *MessageService) findChannelByID(channelID uint64) (*models.Channel, error) {
	ch, err := s.chRepo.FindByID(channelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to find channel: %w", err)
	}
	return ch, nil
}

func (s *MessageService) channelWithRoles(channelID, actorID uint64) (*models.Channel, *models.WorkspaceRole, *models.ChannelRole, error) {
	ch, err := s.findChannelByID(channelID)
	if err != nil {
		return nil, nil, nil, err
	}

	var wsRole *models.WorkspaceRole
	if member, err := s.wsRepo.FindMember(ch.WorkspaceID, actorID); err == nil {
		wsRole = &member.Role
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil, fmt.Errorf("failed to look up workspace role: %w", err)
	}

	var chRole *models.ChannelRole
	if member, err := s.chRepo.FindMember(channelID, actorID); err == nil {
		chRole = &member.Role
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil, fmt.Errorf("failed to look up channel role: %w", err)
	}

	return ch, wsRole, chRole, nil
}

func (s *MessageService) publish(action string, workspaceID uint64, actorID *uint64, subject models.Subject, props map[string]interface{}) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.Event{
		Action:      action,
		WorkspaceID: workspaceID,
		ActorID:     actorID,
		Subject:     subject,
		Properties:  props,
		OccurredAt:  s.now(),
	})
}
