package constants

import "time"

// SessionCookieName names the session cookie.
const SessionCookieName = "collab_session"

// Context keys
const (
	ContextKeyUserID          = "user_id"
	ContextKeyWorkspace       = "workspace"
	ContextKeyWorkspaceMember = "workspace_member"
	ContextKeyChannel         = "channel"
	ContextKeyChannelMember   = "channel_member"
	ContextKeyMessage         = "message"
)

// Validation limits
const (
	MinPasswordLength = 8
	MaxMessageLength  = 4000
	MaxEmojiLength    = 10
	MaxSlugLength     = 100
)

// Pagination
const (
	MinPage         = 1
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Presence and typing windows
const (
	PresenceLivenessWindow = 5 * time.Minute
	PresenceCleanupMaxAge  = 7 * 24 * time.Hour
	TypingIndicatorTTL     = 10 * time.Second
)

// Activity log
const (
	DefaultActivityLimit = 50
	EventBusBuffer       = 256
)
