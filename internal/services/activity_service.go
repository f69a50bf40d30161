package services

import (
	"fmt"
	"log"

	"github.com/teamspace/collab-api/internal/constants"
	"github.com/teamspace/collab-api/internal/events"
	"github.com/teamspace/collab-api/internal/models"
	"github.com/teamspace/collab-api/internal/repository"
	"gorm.io/datatypes"
)

// ActivityService appends domain events to the activity log and serves
// reads from it. Logging failures are logged and swallowed; the activity
// trail is best effort and never fails the triggering operation.
type ActivityService struct {
	actRepo repository.ActivityRepository
}

// NewActivityService creates a new ActivityService.
func NewActivityService(actRepo repository.ActivityRepository) *ActivityService {
	return &ActivityService{actRepo: actRepo}
}

// HandleEvent records one domain event. Suitable as an events.Bus handler.
func (s *ActivityService) HandleEvent(e events.Event) {
	a := &models.Activity{
		WorkspaceID: e.WorkspaceID,
		UserID:      e.ActorID,
		Action:      e.Action,
		SubjectKind: e.Subject.Kind,
		SubjectID:   e.Subject.ID,
		Properties:  datatypes.JSONMap(e.Properties),
		CreatedAt:   e.OccurredAt,
	}

	if err := s.actRepo.Create(a); err != nil {
		log.Printf("activity log write failed for %s: %v", e.Action, err)
	}
}

// ListWorkspaceActivities lists recent activities in a workspace, newest
// first.
func (s *ActivityService) ListWorkspaceActivities(workspaceID uint64, limit int) ([]models.Activity, error) {
	if limit <= 0 || limit > constants.MaxPageSize {
		limit = constants.DefaultActivityLimit
	}
	activities, err := s.actRepo.ListByWorkspace(workspaceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

// ListUserActivities lists recent activities performed by a user, newest
// first.
func (s *ActivityService) ListUserActivities(userID uint64, limit int) ([]models.Activity, error) {
	if limit <= 0 || limit > constants.MaxPageSize {
		limit = constants.DefaultActivityLimit
	}
	activities, err := s.actRepo.ListByUser(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list user activities: %w", err)
	}
	return activities, nil
}
