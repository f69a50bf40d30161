package policy

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/teamspace/collab-api/internal/models"
)

func rolePtr(r models.WorkspaceRole) *models.WorkspaceRole { return &r }
func chRolePtr(r models.ChannelRole) *models.ChannelRole   { return &r }

func TestCanViewChannel(t *testing.T) {
	public := &models.Channel{Type: models.ChannelPublic}
	private := &models.Channel{Type: models.ChannelPrivate}

	// Public: any workspace member, channel membership immaterial
	require.True(t, CanViewChannel(public, rolePtr(models.RoleGuest), nil))
	require.False(t, CanViewChannel(public, nil, nil))

	// Private: explicit channel membership required, workspace role alone
	// is not enough
	require.False(t, CanViewChannel(private, rolePtr(models.RoleOwner), nil))
	require.True(t, CanViewChannel(private, rolePtr(models.RoleMember), chRolePtr(models.ChannelRoleMember)))
}

func TestCanDeleteChannel(t *testing.T) {
	ws := &models.Workspace{OwnerID: 1}
	ch := &models.Channel{CreatorID: 2}

	require.True(t, CanDeleteChannel(ch, ws, 2))  // creator
	require.True(t, CanDeleteChannel(ch, ws, 1))  // workspace owner
	require.False(t, CanDeleteChannel(ch, ws, 3)) // anyone else, admins included
}

func TestCanDeleteWorkspace(t *testing.T) {
	ws := &models.Workspace{OwnerID: 7}

	require.True(t, CanDeleteWorkspace(ws, 7))
	require.False(t, CanDeleteWorkspace(ws, 8))
}

func TestCanManageWorkspaceMembers(t *testing.T) {
	require.True(t, CanManageWorkspaceMembers(rolePtr(models.RoleOwner)))
	require.True(t, CanManageWorkspaceMembers(rolePtr(models.RoleAdmin)))
	require.False(t, CanManageWorkspaceMembers(rolePtr(models.RoleMember)))
	require.False(t, CanManageWorkspaceMembers(rolePtr(models.RoleGuest)))
	require.False(t, CanManageWorkspaceMembers(nil))
}

func TestCanSendMessage(t *testing.T) {
	active := &models.Channel{Type: models.ChannelPublic}
	archived := &models.Channel{Type: models.ChannelPublic, IsArchived: true}

	require.True(t, CanSendMessage(active, rolePtr(models.RoleMember), nil))
	require.False(t, CanSendMessage(archived, rolePtr(models.RoleOwner), chRolePtr(models.ChannelRoleAdmin)))
}

func TestCanDeleteMessage(t *testing.T) {
	msg := &models.Message{UserID: 5}

	// Author
	require.True(t, CanDeleteMessage(msg, 5, nil, rolePtr(models.RoleGuest)))
	// Channel admin
	require.True(t, CanDeleteMessage(msg, 6, chRolePtr(models.ChannelRoleAdmin), rolePtr(models.RoleMember)))
	// Workspace admin
	require.True(t, CanDeleteMessage(msg, 6, nil, rolePtr(models.RoleAdmin)))
	// Plain member who is not the author
	require.False(t, CanDeleteMessage(msg, 6, chRolePtr(models.ChannelRoleMember), rolePtr(models.RoleMember)))
}

func TestCanPinMessage(t *testing.T) {
	require.True(t, CanPinMessage(chRolePtr(models.ChannelRoleAdmin)))
	require.False(t, CanPinMessage(chRolePtr(models.ChannelRoleMember)))
	require.False(t, CanPinMessage(nil))
}

func TestCanUpdateMessage(t *testing.T) {
	msg := &models.Message{UserID: 5}

	require.True(t, CanUpdateMessage(msg, 5))
	require.False(t, CanUpdateMessage(msg, 6))
}
