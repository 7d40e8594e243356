package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkwellapp/inkwell-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProfile",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me",
		Summary:     "Update profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List users",
		Description: "Returns all user accounts. Admin only.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}",
		Summary:     "Get user",
		Description: "Returns a single account. Admin only.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "promoteUser",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/{id}/promote",
		Summary:     "Promote to admin",
		Description: "Grants the admin role. Root only.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handlePromoteUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteUser",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/{id}",
		Summary:     "Delete user",
		Description: "Soft-deletes an account and revokes its sessions",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteUser)
}

// === DTOs ===

// AuthedInput carries just the bearer token.
type AuthedInput struct {
	Authorization string `header:"Authorization"`
}

// UserIDInput identifies a user by path.
type UserIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"User ID"`
}

// UpdateProfileInput wraps the profile update request for Huma.
type UpdateProfileInput struct {
	Authorization string `header:"Authorization"`
	Body          service.UpdateProfileRequest
}

// UserOutput wraps a single user for Huma.
type UserOutput struct {
	Body UserResponse
}

// UserListResponse contains a list of users.
type UserListResponse struct {
	Users []UserResponse `json:"users" doc:"User accounts"`
}

// UserListOutput wraps the user list for Huma.
type UserListOutput struct {
	Body UserListResponse
}

// === Handlers ===

func (s *Server) handleGetCurrentUser(ctx context.Context, input *AuthedInput) (*UserOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: toUserResponse(user)}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, input *UpdateProfileInput) (*UserOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	updated, err := s.services.User.UpdateProfile(ctx, user.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: toUserResponse(updated)}, nil
}

func (s *Server) handleListUsers(ctx context.Context, input *AuthedInput) (*UserListOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	users, err := s.services.User.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = toUserResponse(u)
	}
	return &UserListOutput{Body: UserListResponse{Users: resp}}, nil
}

func (s *Server) handleGetUser(ctx context.Context, input *UserIDInput) (*UserOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	user, err := s.services.User.GetUser(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: toUserResponse(user)}, nil
}

func (s *Server) handlePromoteUser(ctx context.Context, input *UserIDInput) (*UserOutput, error) {
	actor, err := s.authenticateAndRequireRoot(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.User.PromoteToAdmin(ctx, actor, input.ID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: toUserResponse(user)}, nil
}

func (s *Server) handleDeleteUser(ctx context.Context, input *UserIDInput) (*MessageOutput, error) {
	actor, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.User.DeleteUser(ctx, actor, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "user deleted"}}, nil
}
