package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/teamspace/collab-api/internal/constants"
	apierrors "github.com/teamspace/collab-api/internal/errors"
	"github.com/teamspace/collab-api/internal/models"
	"github.com/teamspace/collab-api/internal/utils"
)

func TestMessageService_SendMessage(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createTestUser(t, env.db, "owner")
	ws := createTestWorkspace(t, env, owner, "Team")
	ch := createTestChannel(t, env, ws, owner, "general")

	msg, err := env.msgService.SendMessage(ch.ID, owner.ID, SendMessageInput{
		Content: "  hello world  ",
	})
	require.NoError(t, err)
	require.Equal(t, "hello world", msg.Content)
	require.Equal(t, models.ContentText, msg.ContentType)
	require.NotEmpty(t, msg.UUID)
	require.Nil(t, msg.ParentID)
}

func TestMessageService_SendMessage_Validation(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createTestUser(t, env.db, "owner")
	ws := createTestWorkspace(t, env, owner, "Team")
	ch := createTestChannel(t, env, ws, owner, "general")

	_, err := env.msgService.SendMessage(ch.ID, owner.ID, SendMessageInput{Content: "   "})
	require.ErrorIs(t, err, ErrEmptyMessage)

	_, err = env.msgService.SendMessage(ch.ID, owner.ID, SendMessageInput{
		Content: strings.Repeat("a", constants.MaxMessageLength+1),
	})
	require.ErrorIs(t, err, ErrMessageTooLong)

	// The limit counts characters, not bytes
	_, err = env.msgService.SendMessage(ch.ID, owner.ID, SendMessageInput{
		Content: strings.Repeat("é", constants.MaxMessageLength),
	})
	require.NoError(t, err)

	_, err = env.msgService.SendMessage(ch.ID, owner.ID, SendMessageInput{
		Content: strings.Repeat("é", constants.MaxMessageLength+1),
	})
	require.ErrorIs(t, err, ErrMessageTooLong)
}

func TestMessageService_SendMessage_PrivateChannelNonMember(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createTestUser(t, env.db, "owner")
	alice := createTestUser(t, env.db, "alice")
	ws := createTestWorkspace(t, env, owner, "Team")

	_, err := env.wsService.AddMember(ws.ID, owner.ID, alice.ID, models.RoleMember)
	require.NoError(t, err)

	ch, err := env.chService.CreateChannel(ws.ID, owner.ID, CreateChannelInput{
		Name: "secret",
		Type: models.ChannelPrivate,
	})
	require.NoError(t, err)

	// A workspace member without channel membership gets the Forbidden
	// kind; the HTTP layer presents it as a 404
	_, err = env.msgService.SendMessage(ch.ID, alice.ID, SendMessageInput{Content: "hi"})
	require.ErrorIs(t, err, ErrChannelAccessDenied)
	require.Equal(t, apierrors.KindForbidden, apierrors.KindOf(err))
}

func TestMessageService_SendMessage_ArchivedChannel(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createTestUser(t, env.db, "owner")
	ws := createTestWorkspace(t, env, owner, "Team")
	ch := createTestChannel(t, env, ws, owner, "general")

	_, err := env.chService.ArchiveChannel(ch.ID, owner.ID)
	require.NoError(t, err)

	_, err = env.msgService.SendMessage(ch.ID, owner.ID, SendMessageInput{Content: "too late"})
	require.ErrorIs(t, err, ErrChannelArchived)
}

func TestMessageService_ThreadsStayOneLevelDeep(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createTestUser(t, env.db, "owner")
	ws := createTestWorkspace(t, env, owner, "Team")
	ch := createTestChannel(t, env, ws, owner, "general")

	root, err := env.msgService.SendMessage(ch.ID, owner.ID, SendMessageInput{Content: "root"})
	require.NoError(t, err)

	reply, err := env.msgService.SendMessage(ch.ID, owner.ID, SendMessageInput{
		Content:  "reply",
		ParentID: &root.ID,
	})
	require.NoError(t, err)
	require.Equal(t, root.ID, *reply.ParentID)

	// Replying to a reply flattens onto the thread root
	deep, err := env.msgService.SendMessage(ch.ID, owner.ID, SendMessageInput{
		Content:  "deep",
		ParentID: &reply.ID,
	})
	require.NoError(t, err)
	require.Equal(t, root.ID, *deep.ParentID)

	gotRoot, replies, err := env.msgService.GetThreadMessages(root.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, root.ID, gotRoot.ID)
	require.Len(t, replies, 2)
	// Oldest first
	require.Equal(t, "reply", replies[0].Content)
	require.Equal(t, "deep", replies[1].Content)
}

func TestMessageService_SendMessage_ParentFromOtherChannel(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createTestUser(t, env.db, "owner")
	ws := createTestWorkspace(t, env, owner, "Team")
	ch1 := createTestChannel(t, env, ws, owner, "general")
	ch2 := createTestChannel(t, env, ws, owner, "random")

	root, err := env.msgService.SendMessage(ch1.ID, owner.ID, SendMessageInput{Content: "root"})
	require.NoError(t, err)

	_, err = env.msgService.SendMessage(ch2.ID, owner.ID, SendMessageInput{
		Content:  "cross",
		ParentID: &root.ID,
	})
	require.ErrorIs(t, err, ErrParentWrongChannel)
}

func TestMessageService_UpdateMessage_AuthorOnly(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createTestUser(t, env.db, "owner")
	alice := createTestUser(t, env.db, "alice")
	ws := createTestWorkspace(t, env, owner, "Team")
	ch := createTestChannel(t, env, ws, owner, "general")

	_, err := env.wsService.AddMember(ws.ID, owner.ID, alice.ID, models.RoleAdmin)
	require.NoError(t, err)

	msg, err := env.msgService.SendMessage(ch.ID, owner.ID, SendMessageInput{Content: "original"})
	require.NoError(t, err)
	require.Nil(t, msg.EditedAt)

	// Even a workspace admin cannot edit someone else's message
	_, err = env.msgService.UpdateMessage(msg.ID, alice.ID, "hacked")
	require.ErrorIs(t, err, ErrMessageForbidden)

	updated, err := env.msgService.UpdateMessage(msg.ID, owner.ID, "edited")
	require.NoError(t, err)
	require.Equal(t, "edited", updated.Content)
	require.NotNil(t, updated.EditedAt)
}

func TestMessageService_DeleteMessage_Policy(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createTestUser(t, env.db, "owner")
	alice := createTestUser(t, env.db, "alice")
	bob := createTestUser(t, env.db, "bob")
	ws := createTestWorkspace(t, env, owner, "Team")
	ch := createTestChannel(t, env, ws, owner, "general")

	_, err := env.wsService.AddMember(ws.ID, owner.ID, alice.ID, models.RoleMember)
	require.NoError(t, err)
	_, err = env.wsService.AddMember(ws.ID, owner.ID, bob.ID, models.RoleMember)
	require.NoError(t, err)

	// A plain member cannot delete another member's message
	msg, err := env.msgService.SendMessage(ch.ID, alice.ID, SendMessageInput{Content: "mine"})
	require.NoError(t, err)
	err = env.msgService.DeleteMessage(msg.ID, bob.ID)
	require.ErrorIs(t, err, ErrMessageForbidden)

	// The author can
	require.NoError(t, env.msgService.DeleteMessage(msg.ID, alice.ID))

	// A workspace admin/owner can delete anyone's message
	msg2, err := env.msgService.SendMessage(ch.ID, alice.ID, SendMessageInput{Content: "another"})
	require.NoError(t, err)
	require.NoError(t, env.msgService.DeleteMessage(msg2.ID, owner.ID))
}

func TestMessageService_DeleteMessage_KeepsThreadIntact(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createTestUser(t, env.db, "owner")
	ws := createTestWorkspace(t, env, owner, "Team")
	ch := createTestChannel(t, env, ws, owner, "general")

	root, err := env.msgService.SendMessage(ch.ID, owner.ID, SendMessageInput{Content: "root"})
	require.NoError(t, err)
	_, err = env.msgService.SendMessage(ch.ID, owner.ID, SendMessageInput{
		Content:  "reply",
		ParentID: &root.ID,
	})
	require.NoError(t, err)

	require.NoError(t, env.msgService.DeleteMessage(root.ID, owner.ID))

	// Soft delete: the root row survives for its replies
	var count int64
	require.NoError(t, env.db.Unscoped().Model(&models.Message{}).Where("id = ?", root.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)

	// But it is gone from listings
	messages, total, err := env.msgService.GetChannelMessages(ch.ID, owner.ID, utils.NormalizePagination(1, 50))
	require.NoError(t, err)
	require.EqualValues(t, 0, total)
	require.Empty(t, messages)
}

func TestMessageService_Reactions(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createTestUser(t, env.db, "owner")
	ws := createTestWorkspace(t, env, owner, "Team")
	ch := createTestChannel(t, env, ws, owner, "general")

	msg, err := env.msgService.SendMessage(ch.ID, owner.ID, SendMessageInput{Content: "react to me"})
	require.NoError(t, err)

	_, err = env.msgService.AddReaction(msg.ID, owner.ID, "👍")
	require.NoError(t, err)

	// Same (user, emoji) pair again conflicts
	_, err = env.msgService.AddReaction(msg.ID, owner.ID, "👍")
	require.ErrorIs(t, err, ErrDuplicateReaction)

	// A different emoji from the same user is fine
	_, err = env.msgService.AddReaction(msg.ID, owner.ID, "🎉")
	require.NoError(t, err)

	removed, err := env.msgService.RemoveReaction(msg.ID, owner.ID, "👍")
	require.NoError(t, err)
	require.True(t, removed)

	// Removing an absent reaction succeeds without change
	removed, err = env.msgService.RemoveReaction(msg.ID, owner.ID, "👍")
	require.NoError(t, err)
	require.False(t, removed)
}

func TestMessageService_Pinning(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createTestUser(t, env.db, "owner")
	alice := createTestUser(t, env.db, "alice")
	ws := createTestWorkspace(t, env, owner, "Team")
	ch := createTestChannel(t, env, ws, owner, "general")

	_, err := env.wsService.AddMember(ws.ID, owner.ID, alice.ID, models.RoleMember)
	require.NoError(t, err)
	_, err = env.chService.AddMember(ch.ID, owner.ID, alice.ID, models.ChannelRoleMember)
	require.NoError(t, err)

	msg, err := env.msgService.SendMessage(ch.ID, owner.ID, SendMessageInput{Content: "important"})
	require.NoError(t, err)

	// Plain channel members cannot pin
	_, err = env.msgService.PinMessage(msg.ID, alice.ID)
	require.ErrorIs(t, err, ErrMessageForbidden)

	pinned, err := env.msgService.PinMessage(msg.ID, owner.ID)
	require.NoError(t, err)
	require.True(t, pinned.IsPinned)
	require.NotNil(t, pinned.PinnedAt)
	require.Equal(t, owner.ID, *pinned.PinnedBy)

	// A re-pin by another channel admin moves the pin attribution
	_, err = env.chService.AddMember(ch.ID, owner.ID, alice.ID, models.ChannelRoleAdmin)
	require.NoError(t, err)
	repinned, err := env.msgService.PinMessage(msg.ID, alice.ID)
	require.NoError(t, err)
	require.True(t, repinned.IsPinned)
	require.Equal(t, alice.ID, *repinned.PinnedBy)

	list, err := env.msgService.GetPinnedMessages(ch.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	unpinned, err := env.msgService.UnpinMessage(msg.ID, owner.ID)
	require.NoError(t, err)
	require.False(t, unpinned.IsPinned)
	require.Nil(t, unpinned.PinnedAt)
	require.Nil(t, unpinned.PinnedBy)
}

func TestMessageService_GetChannelMessages_RootsOnlyNewestFirst(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createTestUser(t, env.db, "owner")
	ws := createTestWorkspace(t, env, owner, "Team")
	ch := createTestChannel(t, env, ws, owner, "general")

	first, err := env.msgService.SendMessage(ch.ID, owner.ID, SendMessageInput{Content: "first"})
	require.NoError(t, err)
	_, err = env.msgService.SendMessage(ch.ID, owner.ID, SendMessageInput{
		Content:  "a reply",
		ParentID: &first.ID,
	})
	require.NoError(t, err)
	_, err = env.msgService.SendMessage(ch.ID, owner.ID, SendMessageInput{Content: "second"})
	require.NoError(t, err)

	messages, total, err := env.msgService.GetChannelMessages(ch.ID, owner.ID, utils.NormalizePagination(1, 50))
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, messages, 2)
	require.Equal(t, "second", messages[0].Content)
	require.Equal(t, "first", messages[1].Content)
}
