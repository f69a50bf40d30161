package dto

import (
	"time"

	"github.com/teamspace/collab-api/internal/models"
)

// ActivityDTO represents an activity log entry in API responses
type ActivityDTO struct {
	ID          uint64                 `json:"id"`
	UUID        string                 `json:"uuid"`
	WorkspaceID uint64                 `json:"workspace_id"`
	UserID      *uint64                `json:"user_id"`
	Action      string                 `json:"action"`
	SubjectKind models.SubjectKind     `json:"subject_kind"`
	SubjectID   uint64                 `json:"subject_id"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// ToActivityDTO converts an Activity model to ActivityDTO
func ToActivityDTO(a models.Activity) ActivityDTO {
	return ActivityDTO{
		ID:          a.ID,
		UUID:        a.UUID,
		WorkspaceID: a.WorkspaceID,
		UserID:      a.UserID,
		Action:      a.Action,
		SubjectKind: a.SubjectKind,
		SubjectID:   a.SubjectID,
		Properties:  a.Properties,
		CreatedAt:   a.CreatedAt,
	}
}

// ToActivityDTOs converts a slice of activities
func ToActivityDTOs(activities []models.Activity) []ActivityDTO {
	dtos := make([]ActivityDTO, len(activities))
	for i, a := range activities {
		dtos[i] = ToActivityDTO(a)
	}
	return dtos
}
