package server

import (
	"fmt"
	"net/http"
	"testing"

	"agora/internal/models"
	"agora/internal/paging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserAdministration(t *testing.T) {
	s, app := newTestServer(t, nil)
	_, aliceToken := createUser(t, s, "alice", models.RoleUser)
	bob, bobToken := createUser(t, s, "bob", models.RoleUser)
	_, adminToken := createUser(t, s, "admin", models.RoleAdmin)
	bobPath := fmt.Sprintf("/api/v1/users/%d", bob.ID)

	status, env := doRequest(t, app, http.MethodGet, bobPath, nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, models.ErrUnauthorized.Code, env.Code)

	status, env = doRequest(t, app, http.MethodPost, bobPath+"/role", map[string]any{"role": "ROLE_ADMIN"}, aliceToken)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, models.ErrForbidden.Code, env.Code)

	status, env = doRequest(t, app, http.MethodPatch, bobPath, map[string]any{"name": "Robert"}, aliceToken)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, models.ErrForbidden.Code, env.Code)

	status, env = doRequest(t, app, http.MethodPatch, bobPath, map[string]any{"name": "Robert"}, bobToken)
	require.Equal(t, http.StatusOK, status, env.Message)
	var updated models.User
	decodeData(t, env, &updated)
	assert.Equal(t, "Robert", updated.Name)

	status, env = doRequest(t, app, http.MethodPatch, bobPath, map[string]any{"email": "alice@example.com"}, bobToken)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.ErrDuplicateValue.Code, env.Code)

	status, env = doRequest(t, app, http.MethodPost, bobPath+"/status", map[string]any{"status": "SUSPENDED"}, adminToken)
	require.Equal(t, http.StatusOK, status, env.Message)
	decodeData(t, env, &updated)
	assert.Equal(t, models.UserStatusSuspended, updated.Status)

	status, env = doRequest(t, app, http.MethodPost, "/api/v1/auth/login",
		map[string]any{"login": "bob", "password": "Passw0rd!23"}, "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, models.ErrForbidden.Code, env.Code)

	status, env = doRequest(t, app, http.MethodGet, "/api/v1/users?status=SUSPENDED", nil, adminToken)
	require.Equal(t, http.StatusOK, status, env.Message)
	var page paging.Page[models.UserSummary]
	decodeData(t, env, &page)
	require.Len(t, page.Content, 1)
	assert.Equal(t, bob.ID, page.Content[0].ID)

	status, env = doRequest(t, app, http.MethodGet, "/api/v1/users?role=ROLE_WIZARD", nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.ErrValidation.Code, env.Code)

	status, env = doRequest(t, app, http.MethodPost, bobPath+"/password", map[string]any{"password": "short"}, bobToken)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.ErrValidation.Code, env.Code)

	status, env = doRequest(t, app, http.MethodGet, "/api/v1/users/9999", nil, adminToken)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, models.ErrUserNotFound.Code, env.Code)
}
