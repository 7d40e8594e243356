package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkwellapp/inkwell-server/internal/color"
	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/register",
		Summary:     "Register",
		Description: "Creates a user account. The first account becomes the root admin.",
		Tags:        []string{"Auth"},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Login",
		Description: "Authenticates with email and password",
		Tags:        []string{"Auth"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "refreshTokens",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/refresh",
		Summary:     "Refresh tokens",
		Description: "Rotates a refresh token into a new token pair",
		Tags:        []string{"Auth"},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Logout",
		Description: "Revokes the current session",
		Tags:        []string{"Auth"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleLogout)
}

// === DTOs ===

// UserResponse contains public user data in API responses.
type UserResponse struct {
	ID          string     `json:"id" doc:"User ID"`
	Email       string     `json:"email" doc:"Email address"`
	DisplayName string     `json:"display_name" doc:"Display name"`
	Role        string     `json:"role" doc:"User role"`
	IsRoot      bool       `json:"is_root" doc:"Whether this is the root admin"`
	AvatarColor string     `json:"avatar_color" doc:"Stable hex color for the user's avatar"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" doc:"Last login time"`
	CreatedAt   time.Time  `json:"created_at" doc:"Creation time"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		IsRoot:      u.IsRoot,
		AvatarColor: color.ForUser(u.ID),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// AuthResponse contains the token pair and user returned by auth endpoints.
type AuthResponse struct {
	User         UserResponse `json:"user" doc:"Authenticated user"`
	AccessToken  string       `json:"access_token" doc:"PASETO access token"`
	RefreshToken string       `json:"refresh_token" doc:"Opaque refresh token"`
	ExpiresAt    time.Time    `json:"expires_at" doc:"Access token expiry"`
	SessionID    string       `json:"session_id" doc:"Session ID"`
	TokenType    string       `json:"token_type" doc:"Always Bearer"`
}

func toAuthResponse(resp *service.AuthResponse) AuthResponse {
	return AuthResponse{
		User:         toUserResponse(resp.User),
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    resp.ExpiresAt,
		SessionID:    resp.SessionID,
		TokenType:    "Bearer",
	}
}

// RegisterInput wraps the registration request for Huma.
type RegisterInput struct {
	Body service.RegisterRequest
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	UserAgent string `header:"User-Agent"`
	Body      service.LoginRequest
}

// RefreshInput wraps the refresh request for Huma.
type RefreshInput struct {
	Body service.RefreshRequest
}

// LogoutInput identifies the session to revoke.
type LogoutInput struct {
	Authorization string `header:"Authorization"`
	Body          struct {
		SessionID string `json:"session_id" validate:"required" doc:"Session to revoke"`
	}
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body AuthResponse
}

// MessageResponse is a plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message" doc:"Human-readable result"`
}

// MessageOutput wraps a message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Register(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: toAuthResponse(resp)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	req := input.Body
	req.UserAgent = input.UserAgent

	resp, err := s.services.Auth.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: toAuthResponse(resp)}, nil
}

func (s *Server) handleRefresh(ctx context.Context, input *RefreshInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.RefreshTokens(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: toAuthResponse(resp)}, nil
}

func (s *Server) handleLogout(ctx context.Context, input *LogoutInput) (*MessageOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}
	if err := s.services.Auth.Logout(ctx, input.Body.SessionID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "logged out"}}, nil
}
