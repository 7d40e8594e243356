package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUser_AdminOnly(t *testing.T) {
	ts := setupTestServer(t)
	adminToken := ts.register(t, "owner@example.com")
	readerToken := ts.register(t, "reader@example.com")
	readerID := ts.userID(t, readerToken)

	resp := ts.api.Get("/api/v1/users/"+readerID, "Authorization: Bearer "+readerToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Get("/api/v1/users/"+readerID, "Authorization: Bearer "+adminToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[UserResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "reader@example.com", envelope.Data.Email)
	assert.NotEmpty(t, envelope.Data.AvatarColor)
}

func TestListUsers_AdminOnly(t *testing.T) {
	ts := setupTestServer(t)
	adminToken := ts.register(t, "owner@example.com")
	ts.register(t, "reader@example.com")

	resp := ts.api.Get("/api/v1/users", "Authorization: Bearer "+adminToken)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[UserListResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Users, 2)
}

func TestPromoteUser_RootOnly(t *testing.T) {
	ts := setupTestServer(t)
	rootToken := ts.register(t, "owner@example.com")
	readerToken := ts.register(t, "reader@example.com")
	targetToken := ts.register(t, "target@example.com")
	targetID := ts.userID(t, targetToken)

	resp := ts.api.Post("/api/v1/users/"+targetID+"/promote",
		"Authorization: Bearer "+readerToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Post("/api/v1/users/"+targetID+"/promote",
		"Authorization: Bearer "+rootToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[UserResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "admin", envelope.Data.Role)
}

func TestDeleteUser_RevokesAccess(t *testing.T) {
	ts := setupTestServer(t)
	rootToken := ts.register(t, "owner@example.com")
	readerToken := ts.register(t, "reader@example.com")
	readerID := ts.userID(t, readerToken)

	resp := ts.api.Delete("/api/v1/users/"+readerID, "Authorization: Bearer "+rootToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/users/me", "Authorization: Bearer "+readerToken)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestUpdateProfile(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.register(t, "owner@example.com")

	resp := ts.api.Patch("/api/v1/users/me", map[string]any{
		"display_name": "New Name",
	}, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[UserResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "New Name", envelope.Data.DisplayName)
}
