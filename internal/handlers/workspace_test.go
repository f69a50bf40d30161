package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/teamspace/collab-api/internal/dto"
	"github.com/teamspace/collab-api/internal/models"
	"github.com/teamspace/collab-api/internal/services"
)

func TestWorkspaceHandler_CreateWorkspace(t *testing.T) {
	env := setupHandlerTestEnv(t)

	_, cookies := signupAndLogin(t, env, "owner")

	w := doJSON(t, env, http.MethodPost, "/api/workspaces", map[string]string{
		"name": "Product Team",
	}, cookies)

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.WorkspaceDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "Product Team", response.Name)
	require.Equal(t, "product-team", response.Slug)
}

func TestWorkspaceHandler_RequiresAuth(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := doJSON(t, env, http.MethodPost, "/api/workspaces", map[string]string{
		"name": "Nope",
	}, nil)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWorkspaceHandler_NonMemberGets404(t *testing.T) {
	env := setupHandlerTestEnv(t)

	owner, _ := signupAndLogin(t, env, "owner")
	_, strangerCookies := signupAndLogin(t, env, "stranger")

	ws, err := env.wsService.CreateWorkspace(services.CreateWorkspaceInput{
		Name:    "Private Team",
		OwnerID: owner.ID,
	})
	require.NoError(t, err)

	// Existence is not leaked: not found, not forbidden
	w := doJSON(t, env, http.MethodGet, fmt.Sprintf("/api/workspaces/%d", ws.ID), nil, strangerCookies)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestWorkspaceHandler_DeleteRequiresOwner(t *testing.T) {
	env := setupHandlerTestEnv(t)

	owner, ownerCookies := signupAndLogin(t, env, "owner")
	admin, adminCookies := signupAndLogin(t, env, "admin")

	ws, err := env.wsService.CreateWorkspace(services.CreateWorkspaceInput{
		Name:    "Team",
		OwnerID: owner.ID,
	})
	require.NoError(t, err)
	_, err = env.wsService.AddMember(ws.ID, owner.ID, admin.ID, models.RoleAdmin)
	require.NoError(t, err)

	w := doJSON(t, env, http.MethodDelete, fmt.Sprintf("/api/workspaces/%d", ws.ID), nil, adminCookies)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, env, http.MethodDelete, fmt.Sprintf("/api/workspaces/%d", ws.ID), nil, ownerCookies)
	require.Equal(t, http.StatusOK, w.Code)

	// The deleted workspace is now invisible even to its owner
	w = doJSON(t, env, http.MethodGet, fmt.Sprintf("/api/workspaces/%d", ws.ID), nil, ownerCookies)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestWorkspaceHandler_RestoreAfterDelete(t *testing.T) {
	env := setupHandlerTestEnv(t)

	owner, cookies := signupAndLogin(t, env, "owner")

	ws, err := env.wsService.CreateWorkspace(services.CreateWorkspaceInput{
		Name:    "Team",
		OwnerID: owner.ID,
	})
	require.NoError(t, err)
	require.NoError(t, env.wsService.DeleteWorkspace(ws.ID, owner.ID))

	w := doJSON(t, env, http.MethodPost, fmt.Sprintf("/api/workspaces/%d/restore", ws.ID), nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, env, http.MethodGet, fmt.Sprintf("/api/workspaces/%d", ws.ID), nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestWorkspaceHandler_AddMemberRequiresManager(t *testing.T) {
	env := setupHandlerTestEnv(t)

	owner, _ := signupAndLogin(t, env, "owner")
	member, memberCookies := signupAndLogin(t, env, "member")
	target, _ := signupAndLogin(t, env, "target")

	ws, err := env.wsService.CreateWorkspace(services.CreateWorkspaceInput{
		Name:    "Team",
		OwnerID: owner.ID,
	})
	require.NoError(t, err)
	_, err = env.wsService.AddMember(ws.ID, owner.ID, member.ID, models.RoleMember)
	require.NoError(t, err)

	w := doJSON(t, env, http.MethodPost, fmt.Sprintf("/api/workspaces/%d/members", ws.ID), map[string]interface{}{
		"user_id": target.ID,
	}, memberCookies)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestWorkspaceHandler_ActivityTrail(t *testing.T) {
	env := setupHandlerTestEnv(t)

	owner, cookies := signupAndLogin(t, env, "owner")

	w := doJSON(t, env, http.MethodPost, "/api/workspaces", map[string]string{
		"name": "Team",
	}, cookies)
	require.Equal(t, http.StatusCreated, w.Code)

	var ws dto.WorkspaceDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ws))

	// The event bus is asynchronous; drain it before reading the log
	env.bus.Close()

	activities, err := env.actService.ListWorkspaceActivities(ws.ID, 10)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	require.Equal(t, "workspace.created", activities[0].Action)
	require.Equal(t, models.SubjectWorkspace, activities[0].SubjectKind)
	require.Equal(t, owner.ID, *activities[0].UserID)
}
