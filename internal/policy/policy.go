// Package policy holds the authorization rules as pure predicates. Callers
// load the actor's workspace/channel memberships and pass the roles in; the
// predicates never touch storage, so they evaluate identically everywhere
// and are trivially testable.
package policy

import "github.com/teamspace/collab-api/internal/models"

// Workspace rules

// CanViewWorkspace: any member.
func CanViewWorkspace(wsRole *models.WorkspaceRole) bool {
	return wsRole != nil
}

// CanUpdateWorkspace: owner or admin.
func CanUpdateWorkspace(wsRole *models.WorkspaceRole) bool {
	return wsRole != nil && wsRole.CanManageWorkspace()
}

// CanDeleteWorkspace: the workspace's own owner only.
func CanDeleteWorkspace(ws *models.Workspace, actorID uint64) bool {
	return ws.OwnerID == actorID
}

// CanRestoreWorkspace: same as delete.
func CanRestoreWorkspace(ws *models.Workspace, actorID uint64) bool {
	return ws.OwnerID == actorID
}

// CanManageWorkspaceMembers covers add-member, remove-member and
// update-member-role: owner or admin.
func CanManageWorkspaceMembers(wsRole *models.WorkspaceRole) bool {
	return wsRole != nil && wsRole.CanManageWorkspace()
}

// Channel rules

// CanViewChannel: public channel, any workspace member; private/direct,
// explicit channel membership required.
func CanViewChannel(ch *models.Channel, wsRole *models.WorkspaceRole, chRole *models.ChannelRole) bool {
	if ch.Type == models.ChannelPublic {
		return wsRole != nil
	}
	return chRole != nil
}

// CanUpdateChannel: channel creator, or workspace admin/owner.
func CanUpdateChannel(ch *models.Channel, actorID uint64, wsRole *models.WorkspaceRole) bool {
	if ch.CreatorID == actorID {
		return true
	}
	return wsRole != nil && wsRole.CanManageWorkspace()
}

// CanArchiveChannel: same permissions as update.
func CanArchiveChannel(ch *models.Channel, actorID uint64, wsRole *models.WorkspaceRole) bool {
	return CanUpdateChannel(ch, actorID, wsRole)
}

// CanDeleteChannel: channel creator, or the workspace owner specifically.
// Workspace admins cannot delete channels they did not create.
func CanDeleteChannel(ch *models.Channel, ws *models.Workspace, actorID uint64) bool {
	if ch.CreatorID == actorID {
		return true
	}
	return ws.OwnerID == actorID
}

// CanAddChannelMember: public channel, any workspace member may join or add;
// private channel, existing channel member or workspace admin/owner.
func CanAddChannelMember(ch *models.Channel, wsRole *models.WorkspaceRole, chRole *models.ChannelRole) bool {
	if ch.Type == models.ChannelPublic {
		return wsRole != nil
	}
	if chRole != nil {
		return true
	}
	return wsRole != nil && wsRole.CanManageWorkspace()
}

// CanRemoveChannelMember: channel creator, or workspace admin/owner.
func CanRemoveChannelMember(ch *models.Channel, actorID uint64, wsRole *models.WorkspaceRole) bool {
	if ch.CreatorID == actorID {
		return true
	}
	return wsRole != nil && wsRole.CanManageWorkspace()
}

// CanSendMessage: channel must not be archived and the actor must be able
// to view it.
func CanSendMessage(ch *models.Channel, wsRole *models.WorkspaceRole, chRole *models.ChannelRole) bool {
	if ch.IsArchived {
		return false
	}
	return CanViewChannel(ch, wsRole, chRole)
}

// Message rules

// CanUpdateMessage: the author only.
func CanUpdateMessage(msg *models.Message, actorID uint64) bool {
	return msg.UserID == actorID
}

// CanDeleteMessage: the author, a channel admin, or a workspace admin/owner.
func CanDeleteMessage(msg *models.Message, actorID uint64, chRole *models.ChannelRole, wsRole *models.WorkspaceRole) bool {
	if msg.UserID == actorID {
		return true
	}
	if chRole != nil && *chRole == models.ChannelRoleAdmin {
		return true
	}
	return wsRole != nil && wsRole.CanManageWorkspace()
}

// CanPinMessage: channel admins only; plain members cannot pin.
func CanPinMessage(chRole *models.ChannelRole) bool {
	return chRole != nil && *chRole == models.ChannelRoleAdmin
}
