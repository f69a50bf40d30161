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
	ErrWorkspaceNotFound     = apierrors.NewNotFound("workspace not found")
	ErrWorkspaceNameRequired = apierrors.NewInvalid("workspace name cannot be empty")
	ErrDuplicateWorkspaceSlug = apierrors.NewConflict("workspace slug already in use")
	ErrWorkspaceForbidden    = apierrors.NewForbidden("you do not have permission to manage this workspace")
	ErrInvalidRole           = apierrors.NewInvalid("invalid workspace role")
	ErrCannotRemoveOwner     = apierrors.NewInvalidState("the workspace owner cannot be removed")
	ErrMemberNotFound        = apierrors.NewNotFound("workspace member not found")
)

// WorkspaceService owns the workspace registry and the workspace side of
// the membership ledger.
type WorkspaceService struct {
	wsRepo repository.WorkspaceRepository
	bus    *events.Bus
}

// NewWorkspaceService creates a new WorkspaceService.
func NewWorkspaceService(wsRepo repository.WorkspaceRepository, bus *events.Bus) *WorkspaceService {
	return &WorkspaceService{
		wsRepo: wsRepo,
		bus:    bus,
	}
}

// CreateWorkspaceInput represents parameters to create a new workspace.
type CreateWorkspaceInput struct {
	Name        string
	Slug        string
	Description string
	Settings    map[string]interface{}
	OwnerID     uint64
}

// UpdateWorkspaceInput carries optional field updates.
type UpdateWorkspaceInput struct {
	Name        *string
	Slug        *string
	Description *string
	Settings    map[string]interface{}
	IsActive    *bool
}

// CreateWorkspace creates a workspace and its owner membership atomically.
func (s *WorkspaceService) CreateWorkspace(input CreateWorkspaceInput) (*models.Workspace, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrWorkspaceNameRequired
	}

	slug := input.Slug
	if slug == "" {
		slug = utils.Slugify(name)
	}
	if slug == "" {
		return nil, ErrWorkspaceNameRequired
	}

	ws := &models.Workspace{
		OwnerID:     input.OwnerID,
		Name:        name,
		Slug:        slug,
		Description: input.Description,
		Settings:    datatypes.JSONMap(input.Settings),
		IsActive:    true,
	}

	owner := &models.WorkspaceMember{
		UserID:   input.OwnerID,
		Role:     models.RoleOwner,
		JoinedAt: time.Now(),
		IsActive: true,
	}

	if err := s.wsRepo.CreateWithOwner(ws, owner); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateWorkspaceSlug
		}
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	s.publish(events.ActionWorkspaceCreated, ws.ID, &input.OwnerID, models.Subject{Kind: models.SubjectWorkspace, ID: ws.ID}, map[string]interface{}{
		"name": ws.Name,
		"slug": ws.Slug,
	})

	return ws, nil
}

// GetWorkspace returns a workspace with its members. The caller is
// expected to have passed the membership gate already.
func (s *WorkspaceService) GetWorkspace(workspaceID uint64) (*models.Workspace, []models.WorkspaceMember, error) {
	ws, err := s.findWorkspace(workspaceID)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.wsRepo.ListMembers(workspaceID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list workspace members: %w", err)
	}

	return ws, members, nil
}

// ListUserWorkspaces returns workspaces the user belongs to along with
// channel/member counts, newest first.
func (s *WorkspaceService) ListUserWorkspaces(userID uint64) ([]models.Workspace, map[uint64]repository.WorkspaceCounts, error) {
	workspaces, err := s.wsRepo.ListForUser(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list workspaces: %w", err)
	}

	ids := make([]uint64, len(workspaces))
	for i, ws := range workspaces {
		ids[i] = ws.ID
	}

	counts, err := s.wsRepo.Counts(ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count workspace contents: %w", err)
	}

	return workspaces, counts, nil
}

// UpdateWorkspace applies the given updates if the actor is an owner or admin.
func (s *WorkspaceService) UpdateWorkspace(workspaceID, actorID uint64, input UpdateWorkspaceInput) (*models.Workspace, error) {
	ws, err := s.findWorkspace(workspaceID)
	if err != nil {
		return nil, err
	}

	role, err := s.MemberRole(workspaceID, actorID)
	if err != nil {
		return nil, err
	}
	if !policy.CanUpdateWorkspace(role) {
		return nil, ErrWorkspaceForbidden
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrWorkspaceNameRequired
		}
		ws.Name = name
	}
	if input.Slug != nil && *input.Slug != "" {
		ws.Slug = *input.Slug
	}
	if input.Description != nil {
		ws.Description = *input.Description
	}
	if input.Settings != nil {
		ws.Settings = datatypes.JSONMap(input.Settings)
	}
	if input.IsActive != nil {
		ws.IsActive = *input.IsActive
	}

	if err := s.wsRepo.Update(ws); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateWorkspaceSlug
		}
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}

	s.publish(events.ActionWorkspaceUpdated, ws.ID, &actorID, models.Subject{Kind: models.SubjectWorkspace, ID: ws.ID}, nil)

	return ws, nil
}

// DeleteWorkspace soft deletes a workspace. Only the owner may do this;
// channels and messages are cascade-hidden, never erased.
func (s *WorkspaceService) DeleteWorkspace(workspaceID, actorID uint64) error {
	ws, err := s.findWorkspace(workspaceID)
	if err != nil {
		return err
	}

	if !policy.CanDeleteWorkspace(ws, actorID) {
		return ErrWorkspaceForbidden
	}

	if err := s.wsRepo.Delete(workspaceID); err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}

	s.publish(events.ActionWorkspaceDeleted, ws.ID, &actorID, models.Subject{Kind: models.SubjectWorkspace, ID: ws.ID}, nil)

	return nil
}

// RestoreWorkspace reverses a soft delete. Owner only.
func (s *WorkspaceService) RestoreWorkspace(workspaceID, actorID uint64) (*models.Workspace, error) {
	ws, err := s.wsRepo.FindDeletedByID(workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	if !policy.CanRestoreWorkspace(ws, actorID) {
		return nil, ErrWorkspaceForbidden
	}

	if err := s.wsRepo.Restore(workspaceID); err != nil {
		return nil, fmt.Errorf("failed to restore workspace: %w", err)
	}

	s.publish(events.ActionWorkspaceRestored, ws.ID, &actorID, models.Subject{Kind: models.SubjectWorkspace, ID: ws.ID}, nil)

	return s.findWorkspace(workspaceID)
}

// AddMember adds a user to the workspace or updates an existing member's
// role. The operation is an idempotent upsert: joined_at is preserved for
// existing members.
func (s *WorkspaceService) AddMember(workspaceID, actorID, targetID uint64, role models.WorkspaceRole) (*models.WorkspaceMember, error) {
	if _, err := s.findWorkspace(workspaceID); err != nil {
		return nil, err
	}

	actorRole, err := s.MemberRole(workspaceID, actorID)
	if err != nil {
		return nil, err
	}
	if !policy.CanManageWorkspaceMembers(actorRole) {
		return nil, ErrWorkspaceForbidden
	}

	if role == "" {
		role = models.RoleMember
	}
	if !models.ValidWorkspaceRole(role) {
		return nil, ErrInvalidRole
	}

	member := &models.WorkspaceMember{
		WorkspaceID: workspaceID,
		UserID:      targetID,
		Role:        role,
		JoinedAt:    time.Now(),
		IsActive:    true,
	}

	if err := s.wsRepo.UpsertMember(member); err != nil {
		return nil, fmt.Errorf("failed to add workspace member: %w", err)
	}

	s.publish(events.ActionMemberAdded, workspaceID, &actorID, models.Subject{Kind: models.SubjectUser, ID: targetID}, map[string]interface{}{
		"role": string(role),
	})

	return s.wsRepo.FindMember(workspaceID, targetID)
}

// RemoveMember removes a member from the workspace. Removing someone who is
// not a member reports false without error so enclosing operations are not
// aborted. The owner membership can never be removed this way.
func (s *WorkspaceService) RemoveMember(workspaceID, actorID, targetID uint64) (bool, error) {
	ws, err := s.findWorkspace(workspaceID)
	if err != nil {
		return false, err
	}

	actorRole, err := s.MemberRole(workspaceID, actorID)
	if err != nil {
		return false, err
	}
	if !policy.CanManageWorkspaceMembers(actorRole) {
		return false, ErrWorkspaceForbidden
	}

	if ws.OwnerID == targetID {
		return false, ErrCannotRemoveOwner
	}

	removed, err := s.wsRepo.RemoveMember(workspaceID, targetID)
	if err != nil {
		return false, fmt.Errorf("failed to remove workspace member: %w", err)
	}

	if removed {
		s.publish(events.ActionMemberRemoved, workspaceID, &actorID, models.Subject{Kind: models.SubjectUser, ID: targetID}, nil)
	}

	return removed, nil
}

// UpdateMemberRole changes an existing member's role. Role transitions are
// always explicit.
func (s *WorkspaceService) UpdateMemberRole(workspaceID, actorID, targetID uint64, role models.WorkspaceRole) (*models.WorkspaceMember, error) {
	if _, err := s.findWorkspace(workspaceID); err != nil {
		return nil, err
	}

	actorRole, err := s.MemberRole(workspaceID, actorID)
	if err != nil {
		return nil, err
	}
	if !policy.CanManageWorkspaceMembers(actorRole) {
		return nil, ErrWorkspaceForbidden
	}

	if !models.ValidWorkspaceRole(role) {
		return nil, ErrInvalidRole
	}

	member, err := s.wsRepo.FindMember(workspaceID, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find workspace member: %w", err)
	}

	member.Role = role
	if err := s.wsRepo.UpsertMember(member); err != nil {
		return nil, fmt.Errorf("failed to update member role: %w", err)
	}

	s.publish(events.ActionMemberRoleUpdated, workspaceID, &actorID, models.Subject{Kind: models.SubjectUser, ID: targetID}, map[string]interface{}{
		"role": string(role),
	})

	return s.wsRepo.FindMember(workspaceID, targetID)
}

// IsMember reports whether the user holds a membership row.
func (s *WorkspaceService) IsMember(workspaceID, userID uint64) (bool, error) {
	_, err := s.wsRepo.FindMember(workspaceID, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check membership: %w", err)
}

// MemberRole returns the user's role, or nil when the user is not a member.
func (s *WorkspaceService) MemberRole(workspaceID, userID uint64) (*models.WorkspaceRole, error) {
	member, err := s.wsRepo.FindMember(workspaceID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up member role: %w", err)
	}
	return &member.Role, nil
}

func (s *WorkspaceService) findWorkspace(workspaceID uint64) (*models.Workspace, error) {
	ws, err := s.wsRepo.FindByID(workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}
	return ws, nil
}

func (s *WorkspaceService) publish(action string, workspaceID uint64, actorID *uint64, subject models.Subject, props map[string]interface{}) {
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
