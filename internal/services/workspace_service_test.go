package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/teamspace/collab-api/internal/models"
)

func TestWorkspaceService_CreateWorkspace(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createTestUser(t, env.db, "owner")

	ws, err := env.wsService.CreateWorkspace(CreateWorkspaceInput{
		Name:    "Product Team",
		OwnerID: owner.ID,
	})
	require.NoError(t, err)
	require.Equal(t, "Product Team", ws.Name)
	require.Equal(t, "product-team", ws.Slug)
	require.NotEmpty(t, ws.UUID)
	require.True(t, ws.IsActive)

	// Creator becomes owner member atomically
	role, err := env.wsService.MemberRole(ws.ID, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, role)
	require.Equal(t, models.RoleOwner, *role)
}

func TestWorkspaceService_CreateWorkspace_DuplicateSlug(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createTestUser(t, env.db, "owner")

	_, err := env.wsService.CreateWorkspace(CreateWorkspaceInput{
		Name:    "Product Team",
		OwnerID: owner.ID,
	})
	require.NoError(t, err)

	_, err = env.wsService.CreateWorkspace(CreateWorkspaceInput{
		Name:    "Other",
		Slug:    "product-team",
		OwnerID: owner.ID,
	})
	require.ErrorIs(t, err, ErrDuplicateWorkspaceSlug)
}

func TestWorkspaceService_CreateWorkspace_EmptyName(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createTestUser(t, env.db, "owner")

	_, err := env.wsService.CreateWorkspace(CreateWorkspaceInput{
		Name:    "   ",
		OwnerID: owner.ID,
	})
	require.ErrorIs(t, err, ErrWorkspaceNameRequired)
}

func TestWorkspaceService_AddMember_IdempotentUpsert(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createTestUser(t, env.db, "owner")
	alice := createTestUser(t, env.db, "alice")
	ws := createTestWorkspace(t, env, owner, "Team")

	first, err := env.wsService.AddMember(ws.ID, owner.ID, alice.ID, models.RoleMember)
	require.NoError(t, err)
	require.Equal(t, models.RoleMember, first.Role)

	time.Sleep(10 * time.Millisecond)

	// Re-adding updates the role but preserves the original joined_at
	second, err := env.wsService.AddMember(ws.ID, owner.ID, alice.ID, models.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, second.Role)
	require.WithinDuration(t, first.JoinedAt, second.JoinedAt, time.Millisecond)

	// Still exactly one membership row
	var count int64
	require.NoError(t, env.db.Model(&models.WorkspaceMember{}).
		Where("workspace_id = ? AND user_id = ?", ws.ID, alice.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestWorkspaceService_AddMember_RequiresManager(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createTestUser(t, env.db, "owner")
	alice := createTestUser(t, env.db, "alice")
	bob := createTestUser(t, env.db, "bob")
	ws := createTestWorkspace(t, env, owner, "Team")

	_, err := env.wsService.AddMember(ws.ID, owner.ID, alice.ID, models.RoleMember)
	require.NoError(t, err)

	// Plain members cannot add others
	_, err = env.wsService.AddMember(ws.ID, alice.ID, bob.ID, models.RoleMember)
	require.ErrorIs(t, err, ErrWorkspaceForbidden)
}

func TestWorkspaceService_RemoveMember(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createTestUser(t, env.db, "owner")
	alice := createTestUser(t, env.db, "alice")
	ws := createTestWorkspace(t, env, owner, "Team")

	_, err := env.wsService.AddMember(ws.ID, owner.ID, alice.ID, models.RoleMember)
	require.NoError(t, err)

	removed, err := env.wsService.RemoveMember(ws.ID, owner.ID, alice.ID)
	require.NoError(t, err)
	require.True(t, removed)

	// Removing an absent member succeeds without change
	removed, err = env.wsService.RemoveMember(ws.ID, owner.ID, alice.ID)
	require.NoError(t, err)
	require.False(t, removed)
}

func TestWorkspaceService_RemoveMember_OwnerGuard(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createTestUser(t, env.db, "owner")
	alice := createTestUser(t, env.db, "alice")
	ws := createTestWorkspace(t, env, owner, "Team")

	_, err := env.wsService.AddMember(ws.ID, owner.ID, alice.ID, models.RoleAdmin)
	require.NoError(t, err)

	// Even an admin cannot remove the owner membership
	_, err = env.wsService.RemoveMember(ws.ID, alice.ID, owner.ID)
	require.ErrorIs(t, err, ErrCannotRemoveOwner)
}

func TestWorkspaceService_UpdateMemberRole(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createTestUser(t, env.db, "owner")
	alice := createTestUser(t, env.db, "alice")
	ws := createTestWorkspace(t, env, owner, "Team")

	_, err := env.wsService.AddMember(ws.ID, owner.ID, alice.ID, models.RoleGuest)
	require.NoError(t, err)

	member, err := env.wsService.UpdateMemberRole(ws.ID, owner.ID, alice.ID, models.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, member.Role)

	_, err = env.wsService.UpdateMemberRole(ws.ID, owner.ID, alice.ID, "superuser")
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestWorkspaceService_DeleteWorkspace_OwnerOnly(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createTestUser(t, env.db, "owner")
	alice := createTestUser(t, env.db, "alice")
	ws := createTestWorkspace(t, env, owner, "Team")

	_, err := env.wsService.AddMember(ws.ID, owner.ID, alice.ID, models.RoleAdmin)
	require.NoError(t, err)

	// Admins cannot delete, only the owner
	err = env.wsService.DeleteWorkspace(ws.ID, alice.ID)
	require.ErrorIs(t, err, ErrWorkspaceForbidden)

	err = env.wsService.DeleteWorkspace(ws.ID, owner.ID)
	require.NoError(t, err)

	_, _, err = env.wsService.GetWorkspace(ws.ID)
	require.ErrorIs(t, err, ErrWorkspaceNotFound)
}

func TestWorkspaceService_RestoreWorkspace(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createTestUser(t, env.db, "owner")
	alice := createTestUser(t, env.db, "alice")
	ws := createTestWorkspace(t, env, owner, "Team")
	ch := createTestChannel(t, env, ws, owner, "general")

	require.NoError(t, env.wsService.DeleteWorkspace(ws.ID, owner.ID))

	// Non-owners cannot restore
	_, err := env.wsService.RestoreWorkspace(ws.ID, alice.ID)
	require.ErrorIs(t, err, ErrWorkspaceForbidden)

	restored, err := env.wsService.RestoreWorkspace(ws.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, ws.ID, restored.ID)

	// Channels survive the delete/restore round trip untouched
	got, err := env.chService.GetChannel(ch.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, ch.Name, got.Name)

	// Memberships survive too
	role, err := env.wsService.MemberRole(ws.ID, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, role)
	require.Equal(t, models.RoleOwner, *role)
}

func TestWorkspaceService_ListUserWorkspaces(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createTestUser(t, env.db, "owner")
	other := createTestUser(t, env.db, "other")

	ws1 := createTestWorkspace(t, env, owner, "First")
	createTestWorkspace(t, env, other, "NotMine")
	createTestChannel(t, env, ws1, owner, "general")
	createTestChannel(t, env, ws1, owner, "random")

	workspaces, counts, err := env.wsService.ListUserWorkspaces(owner.ID)
	require.NoError(t, err)
	require.Len(t, workspaces, 1)
	require.Equal(t, ws1.ID, workspaces[0].ID)
	require.EqualValues(t, 2, counts[ws1.ID].Channels)
	require.EqualValues(t, 1, counts[ws1.ID].Members)
}
