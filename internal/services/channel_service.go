package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

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
	ErrChannelNotFound       = apierrors.NewNotFound("channel not found")
	ErrChannelNameRequired   = apierrors.NewInvalid("channel name cannot be empty")
	ErrInvalidChannelType    = apierrors.NewInvalid("invalid channel type")
	ErrDuplicateSlug         = apierrors.NewConflict("channel slug already in use in this workspace")
	ErrChannelForbidden      = apierrors.NewForbidden("you do not have permission to manage this channel")
	ErrChannelAccessDenied   = apierrors.NewForbidden("channel access denied")
	ErrNotWorkspaceMember    = apierrors.NewForbidden("user is not a member of the workspace")
	ErrDirectChannelMembers  = apierrors.NewInvalid("direct channels are between exactly two users")
	ErrChannelMemberNotFound = apierrors.NewNotFound("channel member not found")
)

// ChannelService owns the channel directory and the channel side of the
// membership ledger.
type ChannelService struct {
	chRepo repository.ChannelRepository
	wsRepo repository.WorkspaceRepository
	bus    *events.Bus
}

// NewChannelService creates a new ChannelService.
func NewChannelService(chRepo repository.ChannelRepository, wsRepo repository.WorkspaceRepository, bus *events.Bus) *ChannelService {
	return &ChannelService{
		chRepo: chRepo,
		wsRepo: wsRepo,
		bus:    bus,
	}
}

// CreateChannelInput represents parameters to create a new channel.
type CreateChannelInput struct {
	Name        string
	Slug        string
	Description string
	Type        models.ChannelType
	Settings    map[string]interface{}
	// OtherUserID names the second party of a direct channel.
	OtherUserID *uint64
}

// UpdateChannelInput carries optional field updates.
type UpdateChannelInput struct {
	Name        *string
	Slug        *string
	Description *string
	Settings    map[string]interface{}
}

// CreateChannel creates a channel and the creator's admin membership
// atomically. The creator must be a workspace member.
func (s *ChannelService) CreateChannel(workspaceID, creatorID uint64, input CreateChannelInput) (*models.Channel, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrChannelNameRequired
	}

	chType := input.Type
	if chType == "" {
		chType = models.ChannelPublic
	}
	if !models.ValidChannelType(chType) {
		return nil, ErrInvalidChannelType
	}

	creatorRole, err := s.workspaceRole(workspaceID, creatorID)
	if err != nil {
		return nil, err
	}
	if creatorRole == nil {
		return nil, ErrNotWorkspaceMember
	}

	var extra []*models.ChannelMember
	if chType == models.ChannelDirect {
		if input.OtherUserID == nil || *input.OtherUserID == creatorID {
			return nil, ErrDirectChannelMembers
		}
		otherRole, err := s.workspaceRole(workspaceID, *input.OtherUserID)
		if err != nil {
			return nil, err
		}
		if otherRole == nil {
			return nil, ErrNotWorkspaceMember
		}
		extra = append(extra, &models.ChannelMember{
			UserID:                 *input.OtherUserID,
			Role:                   models.ChannelRoleMember,
			NotificationPreference: models.NotifyAll,
			JoinedAt:               time.Now(),
		})
	}

	slug := input.Slug
	if slug == "" {
		slug = utils.Slugify(name)
	}
	if slug == "" {
		return nil, ErrChannelNameRequired
	}

	ch := &models.Channel{
		WorkspaceID: workspaceID,
		CreatorID:   creatorID,
		Name:        name,
		Slug:        slug,
		Description: input.Description,
		Type:        chType,
		Settings:    datatypes.JSONMap(input.Settings),
	}

	creator := &models.ChannelMember{
		UserID:                 creatorID,
		Role:                   models.ChannelRoleAdmin,
		NotificationPreference: models.NotifyAll,
		JoinedAt:               time.Now(),
	}

	if err := s.chRepo.CreateWithCreator(ch, creator, extra...); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	s.publish(events.ActionChannelCreated, workspaceID, &creatorID, models.Subject{Kind: models.SubjectChannel, ID: ch.ID}, map[string]interface{}{
		"name": ch.Name,
		"type": string(ch.Type),
	})

	return ch, nil
}

// GetChannel returns a channel visible to the actor. Invisible channels
// yield ErrChannelAccessDenied; the HTTP layer presents that as a 404 so
// their existence is not leaked.
func (s *ChannelService) GetChannel(channelID, actorID uint64) (*models.Channel, error) {
	ch, err := s.findChannel(channelID)
	if err != nil {
		return nil, err
	}

	wsRole, chRole, err := s.actorRoles(ch, actorID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewChannel(ch, wsRole, chRole) {
		return nil, ErrChannelAccessDenied
	}

	return ch, nil
}

// UpdateChannel applies the given updates.
func (s *ChannelService) UpdateChannel(channelID, actorID uint64, input UpdateChannelInput) (*models.Channel, error) {
	ch, err := s.findChannel(channelID)
	if err != nil {
		return nil, err
	}

	wsRole, err := s.workspaceRole(ch.WorkspaceID, actorID)
	if err != nil {
		return nil, err
	}
	if !policy.CanUpdateChannel(ch, actorID, wsRole) {
		return nil, ErrChannelForbidden
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrChannelNameRequired
		}
		ch.Name = name
	}
	if input.Slug != nil && *input.Slug != "" {
		ch.Slug = *input.Slug
	}
	if input.Description != nil {
		ch.Description = *input.Description
	}
	if input.Settings != nil {
		ch.Settings = datatypes.JSONMap(input.Settings)
	}

	if err := s.chRepo.Update(ch); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("failed to update channel: %w", err)
	}

	s.publish(events.ActionChannelUpdated, ch.WorkspaceID, &actorID, models.Subject{Kind: models.SubjectChannel, ID: ch.ID}, nil)

	return ch, nil
}

// ArchiveChannel flags the channel archived. Archiving an already archived
// channel is a no-op, so the operation is idempotent.
func (s *ChannelService) ArchiveChannel(channelID, actorID uint64) (*models.Channel, error) {
	ch, err := s.findChannel(channelID)
	if err != nil {
		return nil, err
	}

	wsRole, err := s.workspaceRole(ch.WorkspaceID, actorID)
	if err != nil {
		return nil, err
	}
	if !policy.CanArchiveChannel(ch, actorID, wsRole) {
		return nil, ErrChannelForbidden
	}

	if ch.IsArchived {
		return ch, nil
	}

	now := time.Now()
	ch.IsArchived = true
	ch.ArchivedAt = &now

	if err := s.chRepo.Update(ch); err != nil {
		return nil, fmt.Errorf("failed to archive channel: %w", err)
	}

	s.publish(events.ActionChannelArchived, ch.WorkspaceID, &actorID, models.Subject{Kind: models.SubjectChannel, ID: ch.ID}, nil)

	return ch, nil
}

// UnarchiveChannel clears the archived flag. Idempotent like ArchiveChannel.
func (s *ChannelService) UnarchiveChannel(channelID, actorID uint64) (*models.Channel, error) {
	ch, err := s.findChannel(channelID)
	if err != nil {
		return nil, err
	}

	wsRole, err := s.workspaceRole(ch.WorkspaceID, actorID)
	if err != nil {
		return nil, err
	}
	if !policy.CanArchiveChannel(ch, actorID, wsRole) {
		return nil, ErrChannelForbidden
	}

	if !ch.IsArchived {
		return ch, nil
	}

	ch.IsArchived = false
	ch.ArchivedAt = nil

	if err := s.chRepo.Update(ch); err != nil {
		return nil, fmt.Errorf("failed to unarchive channel: %w", err)
	}

	s.publish(events.ActionChannelUnarchived, ch.WorkspaceID, &actorID, models.Subject{Kind: models.SubjectChannel, ID: ch.ID}, nil)

	return ch, nil
}

// DeleteChannel permanently removes a channel, cascading to messages,
// reactions, memberships and typing rows. Only the channel creator or the
// workspace owner may do this; workspace admins cannot delete channels they
// did not create.
func (s *ChannelService) DeleteChannel(channelID, actorID uint64) error {
	ch, err := s.findChannel(channelID)
	if err != nil {
		return err
	}

	ws, err := s.wsRepo.FindByID(ch.WorkspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkspaceNotFound
		}
		return fmt.Errorf("failed to find workspace: %w", err)
	}

	if !policy.CanDeleteChannel(ch, ws, actorID) {
		return ErrChannelForbidden
	}

	if err := s.chRepo.DeleteCascade(channelID); err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}

	s.publish(events.ActionChannelDeleted, ch.WorkspaceID, &actorID, models.Subject{Kind: models.SubjectChannel, ID: ch.ID}, map[string]interface{}{
		"name": ch.Name,
	})

	return nil
}

// ListWorkspaceChannels lists channels in a workspace, newest first and
// archived excluded by default. Private and direct channels the actor does
// not belong to are filtered out.
func (s *ChannelService) ListWorkspaceChannels(workspaceID, actorID uint64, includeArchived bool) ([]models.Channel, error) {
	wsRole, err := s.workspaceRole(workspaceID, actorID)
	if err != nil {
		return nil, err
	}
	if wsRole == nil {
		return nil, ErrNotWorkspaceMember
	}

	channels, err := s.chRepo.ListByWorkspace(workspaceID, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}

	memberIDs, err := s.chRepo.MemberChannelIDs(workspaceID, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channel memberships: %w", err)
	}
	memberOf := make(map[uint64]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		memberOf[id] = struct{}{}
	}

	visible := channels[:0]
	for _, ch := range channels {
		if ch.Type == models.ChannelPublic {
			visible = append(visible, ch)
			continue
		}
		if _, ok := memberOf[ch.ID]; ok {
			visible = append(visible, ch)
		}
	}

	return visible, nil
}

// AddMember adds a user to a channel, or updates an existing membership.
// The target must be a workspace member.
func (s *ChannelService) AddMember(channelID, actorID, targetID uint64, role models.ChannelRole) (*models.ChannelMember, error) {
	ch, err := s.findChannel(channelID)
	if err != nil {
		return nil, err
	}

	wsRole, chRole, err := s.actorRoles(ch, actorID)
	if err != nil {
		return nil, err
	}
	if !policy.CanAddChannelMember(ch, wsRole, chRole) {
		return nil, ErrChannelForbidden
	}

	targetRole, err := s.workspaceRole(ch.WorkspaceID, targetID)
	if err != nil {
		return nil, err
	}
	if targetRole == nil {
		return nil, ErrNotWorkspaceMember
	}

	if role == "" {
		role = models.ChannelRoleMember
	}
	if !models.ValidChannelRole(role) {
		return nil, ErrInvalidRole
	}

	member := &models.ChannelMember{
		ChannelID:              channelID,
		UserID:                 targetID,
		Role:                   role,
		NotificationPreference: models.NotifyAll,
		JoinedAt:               time.Now(),
	}

	if err := s.chRepo.UpsertMember(member); err != nil {
		return nil, fmt.Errorf("failed to add channel member: %w", err)
	}

	s.publish(events.ActionChannelMemberAdded, ch.WorkspaceID, &actorID, models.Subject{Kind: models.SubjectUser, ID: targetID}, map[string]interface{}{
		"channel_id": ch.ID,
	})

	return s.chRepo.FindMember(channelID, targetID)
}

// RemoveMember removes a user from a channel. Members may always remove
// themselves (leave); removing others takes channel-creator or workspace
// admin/owner rights. Removing a non-member reports false without error.
func (s *ChannelService) RemoveMember(channelID, actorID, targetID uint64) (bool, error) {
	ch, err := s.findChannel(channelID)
	if err != nil {
		return false, err
	}

	if actorID != targetID {
		wsRole, err := s.workspaceRole(ch.WorkspaceID, actorID)
		if err != nil {
			return false, err
		}
		if !policy.CanRemoveChannelMember(ch, actorID, wsRole) {
			return false, ErrChannelForbidden
		}
	}

	removed, err := s.chRepo.RemoveMember(channelID, targetID)
	if err != nil {
		return false, fmt.Errorf("failed to remove channel member: %w", err)
	}

	if removed {
		s.publish(events.ActionChannelMemberRemoved, ch.WorkspaceID, &actorID, models.Subject{Kind: models.SubjectUser, ID: targetID}, map[string]interface{}{
			"channel_id": ch.ID,
		})
	}

	return removed, nil
}

// ListMembers lists all explicit members of a channel.
func (s *ChannelService) ListMembers(channelID, actorID uint64) ([]models.ChannelMember, error) {
	ch, err := s.findChannel(channelID)
	if err != nil {
		return nil, err
	}

	wsRole, chRole, err := s.actorRoles(ch, actorID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewChannel(ch, wsRole, chRole) {
		return nil, ErrChannelAccessDenied
	}

	return s.chRepo.ListMembers(channelID)
}

// IsMember reports whether a user holds an explicit channel membership row.
func (s *ChannelService) IsMember(channelID, userID uint64) (bool, error) {
	_, err := s.chRepo.FindMember(channelID, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check channel membership: %w", err)
}

func (s *ChannelService) findChannel(channelID uint64) (*models.Channel, error) {
	ch, err := s.chRepo.FindByID(channelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to find channel: %w", err)
	}
	return ch, nil
}

func (s *ChannelService) workspaceRole(workspaceID, userID uint64) (*models.WorkspaceRole, error) {
	member, err := s.wsRepo.FindMember(workspaceID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up workspace role: %w", err)
	}
	return &member.Role, nil
}

func (s *ChannelService) channelRole(channelID, userID uint64) (*models.ChannelRole, error) {
	member, err := s.chRepo.FindMember(channelID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up channel role: %w", err)
	}
	return &member.Role, nil
}

func (s *ChannelService) actorRoles(ch *models.Channel, actorID uint64) (*models.WorkspaceRole, *models.ChannelRole, error) {
	wsRole, err := s.workspaceRole(ch.WorkspaceID, actorID)
	if err != nil {
		return nil, nil, err
	}
	chRole, err := s.channelRole(ch.ID, actorID)
	if err != nil {
		return nil, nil, err
	}
	return wsRole, chRole, nil
}

func (s *ChannelService) publish(action string, workspaceID uint64, actorID *uint64, subject models.Subject, props map[string]interface{}) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.Event{
		Action:      action,
		WorkspaceID: workspaceID,
		ActorID:     actorID,
		Subject:     subject,
		Properties:  props,
		OccurredAt:  time.Now(),
	})
}
