package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inkwellapp/inkwell-server/internal/auth"
	"github.com/inkwellapp/inkwell-server/internal/domain"
	apperrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

// UserService manages user accounts.
type UserService struct {
	store          *store.Store
	sessionService *SessionService
	validator      *validation.Validator
	logger         *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store *store.Store, sessionService *SessionService, validator *validation.Validator, logger *slog.Logger) *UserService {
	return &UserService{
		store:          store,
		sessionService: sessionService,
		validator:      validator,
		logger:         logger,
	}
}

// GetUser returns a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ListUsers returns all users. Admin only; the handler enforces that.
func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	for user, err := range s.store.Users.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, user)
	}
	return users, nil
}

// UpdateProfileRequest contains the user-editable profile fields.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,max=100"`
	Password    string `json:"password,omitempty" validate:"omitempty,min=8,max=1024"`
}

// UpdateProfile updates a user's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != "" {
		user.DisplayName = req.DisplayName
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	user.Touch()

	if err := s.store.Users.Update(ctx, userID, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// PromoteToAdmin grants a user the admin role. Root only.
func (s *UserService) PromoteToAdmin(ctx context.Context, actor *domain.User, userID string) (*domain.User, error) {
	if !actor.IsRoot {
		return nil, apperrors.Forbidden("only the root admin can promote users")
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Role = domain.RoleAdmin
	user.Touch()
	if err := s.store.Users.Update(ctx, userID, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User promoted to admin", "user_id", userID, "actor_id", actor.ID)
	}
	return user, nil
}

// DeleteUser soft-deletes a user account, recording who removed it, and
// revokes all of its sessions. The root account cannot be deleted.
func (s *UserService) DeleteUser(ctx context.Context, actor *domain.User, userID string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsRoot {
		return apperrors.Forbidden("the root account cannot be deleted")
	}
	if actor.ID != userID && !actor.IsAdmin() {
		return apperrors.Forbidden("cannot delete another user's account")
	}

	deletedBy := ActorFor(actor)
	user.Status = domain.StatusDeleted
	user.DeletedBy = &domain.DeletedBy{Role: deletedBy.Type, ID: deletedBy.ID, Email: deletedBy.Email}
	user.Touch()

	if err := s.store.Users.Update(ctx, userID, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if err := s.sessionService.DeleteUserSessions(ctx, userID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User deleted", "user_id", userID, "actor_id", actor.ID)
	}
	return nil
}

// ActorFor derives the issuing actor identity from a user. The root admin
// acts as super-admin and is identified by email; admins and members by ID.
func ActorFor(user *domain.User) domain.IssuedBy {
	switch {
	case user.IsRoot:
		return domain.IssuedBy{Type: domain.ActorSuperAdmin, Email: user.Email}
	case user.IsAdmin():
		return domain.IssuedBy{Type: domain.ActorAdmin, ID: user.ID}
	default:
		return domain.IssuedBy{Type: domain.ActorUser, ID: user.ID}
	}
}
