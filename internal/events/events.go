package events

import (
	"time"

	"github.com/teamspace/collab-api/internal/models"
)

// Actions recorded in the activity log.
const (
	ActionWorkspaceCreated      = "workspace.created"
	ActionWorkspaceUpdated      = "workspace.updated"
	ActionWorkspaceDeleted      = "workspace.deleted"
	ActionWorkspaceRestored     = "workspace.restored"
	ActionMemberAdded           = "workspace.member_added"
	ActionMemberRemoved         = "workspace.member_removed"
	ActionMemberRoleUpdated     = "workspace.member_role_updated"
	ActionChannelCreated        = "channel.created"
	ActionChannelUpdated        = "channel.updated"
	ActionChannelArchived       = "channel.archived"
	ActionChannelUnarchived     = "channel.unarchived"
	ActionChannelDeleted        = "channel.deleted"
	ActionChannelMemberAdded    = "channel.member_added"
	ActionChannelMemberRemoved  = "channel.member_removed"
	ActionMessageSent           = "message.sent"
	ActionMessageUpdated        = "message.updated"
	ActionMessageDeleted        = "message.deleted"
	ActionMessagePinned         = "message.pinned"
	ActionMessageUnpinned       = "message.unpinned"
	ActionReactionAdded         = "message.reaction_added"
	ActionReactionRemoved       = "message.reaction_removed"
)

// Event is a domain event emitted after a successful mutation. Consumers
// must tolerate duplicates; delivery is at-least-once within the process
// and lost entirely if it crashes, which the activity log accepts.
type Event struct {
	Action      string                 `json:"action"`
	WorkspaceID uint64                 `json:"workspace_id"`
	ActorID     *uint64                `json:"actor_id,omitempty"`
	Subject     models.Subject         `json:"subject"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
	OccurredAt  time.Time              `json:"occurred_at"`
}
