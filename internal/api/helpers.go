package api

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	apperrors "github.com/inkwellapp/inkwell-server/internal/errors"
)

// authenticateRequest validates the Authorization header and returns the
// authenticated user.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (*domain.User, error) {
	if authHeader == "" {
		return nil, huma.Error401Unauthorized("Missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, huma.Error401Unauthorized("Invalid authorization header format")
	}

	user, _, err := s.services.Auth.VerifyAccessToken(ctx, parts[1])
	if err != nil {
		return nil, huma.Error401Unauthorized("Invalid or expired token")
	}
	if user.Status == domain.StatusDeleted {
		return nil, huma.Error401Unauthorized("User not found")
	}

	return user, nil
}

// authenticateAndRequireAdmin validates the token and requires admin role.
func (s *Server) authenticateAndRequireAdmin(ctx context.Context, authHeader string) (*domain.User, error) {
	user, err := s.authenticateRequest(ctx, authHeader)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, apperrors.Forbidden("Admin access required")
	}
	return user, nil
}

// authenticateAndRequireRoot validates the token and requires the root admin.
func (s *Server) authenticateAndRequireRoot(ctx context.Context, authHeader string) (*domain.User, error) {
	user, err := s.authenticateRequest(ctx, authHeader)
	if err != nil {
		return nil, err
	}
	if !user.IsRoot {
		return nil, apperrors.Forbidden("Root access required")
	}
	return user, nil
}
