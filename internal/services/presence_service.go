package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/teamspace/collab-api/internal/constants"
	apierrors "github.com/teamspace/collab-api/internal/errors"
	"github.com/teamspace/collab-api/internal/models"
	"github.com/teamspace/collab-api/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrInvalidPresenceStatus = apierrors.NewInvalid("invalid presence status")

// OnlineUser is a deduplicated presence entry for listing who is online.
type OnlineUser struct {
	UserID         uint64                `json:"user_id"`
	Status         models.PresenceStatus `json:"status"`
	LastActivityAt time.Time             `json:"last_activity_at"`
}

// PresenceStats summarizes workspace presence by effective status.
type PresenceStats struct {
	Online  int64 `json:"online"`
	Away    int64 `json:"away"`
	Busy    int64 `json:"busy"`
	Total   int64 `json:"total"`
	Offline int64 `json:"offline"`
}

// PresenceService tracks user presence and typing indicators. Stored
// statuses decay: a record with no activity inside the liveness window
// reads as offline regardless of what was written.
type PresenceService struct {
	presRepo repository.PresenceRepository
	wsRepo   repository.WorkspaceRepository
	now      func() time.Time
}

// NewPresenceService creates a new PresenceService.
func NewPresenceService(presRepo repository.PresenceRepository, wsRepo repository.WorkspaceRepository) *PresenceService {
	return &PresenceService{
		presRepo: presRepo,
		wsRepo:   wsRepo,
		now:      time.Now,
	}
}

// UpdateWorkspacePresence upserts the workspace-scope presence row for a
// user. Last writer wins on concurrent updates.
func (s *PresenceService) UpdateWorkspacePresence(userID, workspaceID uint64, status models.PresenceStatus, metadata map[string]interface{}) (*models.UserPresence, error) {
	return s.updatePresence(userID, workspaceID, nil, status, metadata)
}

// UpdateChannelPresence upserts a channel-scope presence row for a user.
func (s *PresenceService) UpdateChannelPresence(userID, workspaceID, channelID uint64, status models.PresenceStatus, metadata map[string]interface{}) (*models.UserPresence, error) {
	return s.updatePresence(userID, workspaceID, &channelID, status, metadata)
}

func (s *PresenceService) updatePresence(userID, workspaceID uint64, channelID *uint64, status models.PresenceStatus, metadata map[string]interface{}) (*models.UserPresence, error) {
	if status == "" {
		status = models.StatusOnline
	}
	if !models.ValidPresenceStatus(status) {
		return nil, ErrInvalidPresenceStatus
	}

	if _, err := s.wsRepo.FindMember(workspaceID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotWorkspaceMember
		}
		return nil, fmt.Errorf("failed to look up workspace membership: %w", err)
	}

	p := &models.UserPresence{
		UserID:         userID,
		WorkspaceID:    workspaceID,
		ChannelID:      channelID,
		Status:         status,
		LastActivityAt: s.now(),
		Metadata:       datatypes.JSONMap(metadata),
	}

	if err := s.presRepo.Upsert(p); err != nil {
		return nil, fmt.Errorf("failed to update presence: %w", err)
	}

	return p, nil
}

// Heartbeat refreshes activity on all of the user's presence rows in a
// workspace without changing the stored status.
func (s *PresenceService) Heartbeat(userID, workspaceID uint64) error {
	if err := s.presRepo.Touch(userID, workspaceID, s.now()); err != nil {
		return fmt.Errorf("failed to refresh presence: %w", err)
	}
	return nil
}

// GetUserStatus returns a user's effective workspace status. Users with no
// presence row, or a stale one, are offline.
func (s *PresenceService) GetUserStatus(userID, workspaceID uint64) (models.PresenceStatus, error) {
	p, err := s.presRepo.Find(userID, workspaceID, nil)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.StatusOffline, nil
		}
		return models.StatusOffline, fmt.Errorf("failed to find presence: %w", err)
	}
	return p.EffectiveStatus(s.now(), constants.PresenceLivenessWindow), nil
}

// IsUserOnline reports whether the user's effective status is online.
func (s *PresenceService) IsUserOnline(userID, workspaceID uint64) (bool, error) {
	status, err := s.GetUserStatus(userID, workspaceID)
	if err != nil {
		return false, err
	}
	return status == models.StatusOnline, nil
}

// GetOnlineUsers lists users with live presence in a workspace, one entry
// per user even when they hold rows in several channels.
func (s *PresenceService) GetOnlineUsers(workspaceID uint64) ([]OnlineUser, error) {
	return s.listLive(workspaceID, nil)
}

// GetChannelOnlineUsers lists users with live presence in a channel.
func (s *PresenceService) GetChannelOnlineUsers(workspaceID, channelID uint64) ([]OnlineUser, error) {
	return s.listLive(workspaceID, &channelID)
}

func (s *PresenceService) listLive(workspaceID uint64, channelID *uint64) ([]OnlineUser, error) {
	now := s.now()
	since := now.Add(-constants.PresenceLivenessWindow)

	rows, err := s.presRepo.ListActive(workspaceID, channelID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list presence: %w", err)
	}

	seen := make(map[uint64]int, len(rows))
	users := make([]OnlineUser, 0, len(rows))
	for _, p := range rows {
		status := p.EffectiveStatus(now, constants.PresenceLivenessWindow)
		if status == models.StatusOffline {
			continue
		}
		if idx, ok := seen[p.UserID]; ok {
			// Keep the most recent activity per user.
			if p.LastActivityAt.After(users[idx].LastActivityAt) {
				users[idx].Status = status
				users[idx].LastActivityAt = p.LastActivityAt
			}
			continue
		}
		seen[p.UserID] = len(users)
		users = append(users, OnlineUser{
			UserID:         p.UserID,
			Status:         status,
			LastActivityAt: p.LastActivityAt,
		})
	}

	return users, nil
}

// GetWorkspacePresenceStats summarizes presence across a workspace. Members
// without a live presence row count as offline.
func (s *PresenceService) GetWorkspacePresenceStats(workspaceID uint64) (*PresenceStats, error) {
	since := s.now().Add(-constants.PresenceLivenessWindow)

	counts, err := s.presRepo.CountByStatus(workspaceID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count presence: %w", err)
	}

	members, err := s.wsRepo.ListMembers(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	stats := &PresenceStats{
		Online: counts[models.StatusOnline],
		Away:   counts[models.StatusAway],
		Busy:   counts[models.StatusBusy],
		Total:  int64(len(members)),
	}
	live := stats.Online + stats.Away + stats.Busy
	if stats.Total > live {
		stats.Offline = stats.Total - live
	}

	return stats, nil
}

// CleanupStalePresence removes presence rows idle longer than maxAge and
// returns how many were removed.
func (s *PresenceService) CleanupStalePresence(maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		maxAge = constants.PresenceCleanupMaxAge
	}
	removed, err := s.presRepo.DeleteStale(s.now().Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("failed to clean up presence: %w", err)
	}
	return removed, nil
}

// StartTyping records that a user is typing in a channel. The signal lives
// for a short fixed window; repeated calls extend it.
func (s *PresenceService) StartTyping(channelID, userID uint64) (*models.TypingIndicator, error) {
	now := s.now()
	t := &models.TypingIndicator{
		ChannelID: channelID,
		UserID:    userID,
		StartedAt: now,
		ExpiresAt: now.Add(constants.TypingIndicatorTTL),
	}

	if err := s.presRepo.UpsertTyping(t); err != nil {
		return nil, fmt.Errorf("failed to record typing: %w", err)
	}

	return t, nil
}

// GetTypingUsers lists users currently typing in a channel, excluding the
// asker.
func (s *PresenceService) GetTypingUsers(channelID, excludeUserID uint64) ([]models.TypingIndicator, error) {
	rows, err := s.presRepo.ListTyping(channelID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list typing users: %w", err)
	}

	out := rows[:0]
	for _, t := range rows {
		if t.UserID != excludeUserID {
			out = append(out, t)
		}
	}
	return out, nil
}

// CleanupExpiredTyping removes expired typing rows.
func (s *PresenceService) CleanupExpiredTyping() (int64, error) {
	removed, err := s.presRepo.DeleteExpiredTyping(s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to clean up typing indicators: %w", err)
	}
	return removed, nil
}
