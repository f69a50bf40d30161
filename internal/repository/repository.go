package repository

import (
	"time"

	"github.com/teamspace/collab-api/internal/models"
	"github.com/teamspace/collab-api/internal/utils"
)

// WorkspaceCounts carries per-workspace aggregate counts for listings.
type WorkspaceCounts struct {
	Channels int64
	Members  int64
}

// WorkspaceRepository defines data access for workspaces and the workspace
// side of the membership ledger.
type WorkspaceRepository interface {
	// CreateWithOwner creates a workspace and its owner membership in a
	// single transaction. Partial application is never observable.
	CreateWithOwner(ws *models.Workspace, owner *models.WorkspaceMember) error

	// FindByID finds an active workspace by ID
	FindByID(id uint64) (*models.Workspace, error)

	// FindBySlug finds an active workspace by slug
	FindBySlug(slug string) (*models.Workspace, error)

	// FindDeletedByID finds a soft-deleted workspace by ID
	FindDeletedByID(id uint64) (*models.Workspace, error)

	// Update updates a workspace
	Update(ws *models.Workspace) error

	// Delete soft deletes a workspace; channels and messages are
	// cascade-hidden by query scoping, not erased
	Delete(id uint64) error

	// Restore clears the soft-delete marker
	Restore(id uint64) error

	// ListForUser lists workspaces the user is a member of, newest first
	ListForUser(userID uint64) ([]models.Workspace, error)

	// Counts returns channel/member counts for the given workspaces
	Counts(workspaceIDs []uint64) (map[uint64]WorkspaceCounts, error)

	// UpsertMember adds a member or updates the role of an existing one.
	// JoinedAt is preserved when a row already exists.
	UpsertMember(member *models.WorkspaceMember) error

	// RemoveMember hard deletes a membership row; returns false when no
	// row existed
	RemoveMember(workspaceID, userID uint64) (bool, error)

	// FindMember finds a specific workspace member
	FindMember(workspaceID, userID uint64) (*models.WorkspaceMember, error)

	// ListMembers lists all members of a workspace
	ListMembers(workspaceID uint64) ([]models.WorkspaceMember, error)
}

// ChannelRepository defines data access for channels and channel memberships.
type ChannelRepository interface {
	// CreateWithCreator creates a channel and the creator's admin
	// membership in a single transaction
	CreateWithCreator(ch *models.Channel, creator *models.ChannelMember, extra ...*models.ChannelMember) error

	// FindByID finds a channel by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Channel, error)

	// FindBySlug finds a channel by workspace-scoped slug
	FindBySlug(workspaceID uint64, slug string) (*models.Channel, error)

	// Update updates a channel
	Update(ch *models.Channel) error

	// DeleteCascade hard deletes a channel together with its messages,
	// reactions, memberships and typing indicators
	DeleteCascade(id uint64) error

	// ListByWorkspace lists channels newest first
	ListByWorkspace(workspaceID uint64, includeArchived bool) ([]models.Channel, error)

	// UpsertMember adds a channel member or updates an existing row.
	// JoinedAt is preserved when a row already exists.
	UpsertMember(member *models.ChannelMember) error

	// RemoveMember hard deletes a channel membership; returns false when
	// no row existed
	RemoveMember(channelID, userID uint64) (bool, error)

	// FindMember finds a specific channel member
	FindMember(channelID, userID uint64) (*models.ChannelMember, error)

	// ListMembers lists all members of a channel
	ListMembers(channelID uint64) ([]models.ChannelMember, error)

	// MemberChannelIDs returns the channel IDs within a workspace the user
	// holds a membership row for
	MemberChannelIDs(workspaceID, userID uint64) ([]uint64, error)
}

// MessageFilter holds paging options for listing root messages.
type MessageFilter struct {
	ChannelID  uint64
	Pagination utils.PaginationParams
}

// MessageRepository defines data access for messages and reactions.
type MessageRepository interface {
	// Create creates a new message
	Create(msg *models.Message) error

	// FindByID finds a message by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Message, error)

	// Update updates a message
	Update(msg *models.Message) error

	// Delete soft deletes a message; the row persists for referential
	// integrity of replies and reactions
	Delete(id uint64) error

	// ListRoots lists root messages (no parent) newest first, paginated
	ListRoots(filter MessageFilter) ([]models.Message, int64, error)

	// ListThread lists direct replies to a parent, oldest first
	ListThread(parentID uint64) ([]models.Message, error)

	// ListPinned lists pinned messages of a channel, newest pin first
	ListPinned(channelID uint64) ([]models.Message, error)

	// AddReaction inserts a reaction row; a duplicate (message, user,
	// emoji) triple surfaces as gorm.ErrDuplicatedKey
	AddReaction(r *models.MessageReaction) error

	// RemoveReaction deletes a reaction row; returns false when no row
	// existed
	RemoveReaction(messageID, userID uint64, emoji string) (bool, error)

	// FindReaction finds a specific reaction row
	FindReaction(messageID, userID uint64, emoji string) (*models.MessageReaction, error)
}

// PresenceRepository defines data access for presence records and typing
// indicators. All writes are upserts tolerating last-writer-wins races.
type PresenceRepository interface {
	// Upsert writes the presence row keyed by (user, workspace, channel)
	Upsert(p *models.UserPresence) error

	// Find returns the presence row for the exact scope; channelID nil
	// addresses the workspace-scope row
	Find(userID, workspaceID uint64, channelID *uint64) (*models.UserPresence, error)

	// Touch refreshes last activity on all presence rows of the user in
	// the workspace without changing status
	Touch(userID, workspaceID uint64, at time.Time) error

	// ListActive lists presence rows with activity since the given
	// instant; channelID nil means all rows of the workspace
	ListActive(workspaceID uint64, channelID *uint64, since time.Time) ([]models.UserPresence, error)

	// CountByStatus groups workspace-scope rows active since the given
	// instant by stored status
	CountByStatus(workspaceID uint64, since time.Time) (map[models.PresenceStatus]int64, error)

	// DeleteStale removes presence rows with no activity since the cutoff
	DeleteStale(before time.Time) (int64, error)

	// UpsertTyping writes the typing row keyed by (channel, user)
	UpsertTyping(t *models.TypingIndicator) error

	// ListTyping lists typing rows not yet expired at the given instant
	ListTyping(channelID uint64, at time.Time) ([]models.TypingIndicator, error)

	// DeleteExpiredTyping removes typing rows expired at the given instant
	DeleteExpiredTyping(at time.Time) (int64, error)
}

// ActivityRepository defines data access for the append-only activity log.
type ActivityRepository interface {
	// Create appends an activity row
	Create(a *models.Activity) error

	// ListByWorkspace lists recent workspace activities, newest first
	ListByWorkspace(workspaceID uint64, limit int) ([]models.Activity, error)

	// ListByUser lists recent activities performed by a user, newest first
	ListByUser(userID uint64, limit int) ([]models.Activity, error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)
}
