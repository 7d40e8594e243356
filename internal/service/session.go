package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/auth"
	"github.com/inkwellapp/inkwell-server/internal/domain"
	apperrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// SessionService manages refresh-token sessions.
type SessionService struct {
	store        *store.Store
	tokenService *auth.TokenService
	logger       *slog.Logger
}

// NewSessionService creates a new session service.
func NewSessionService(store *store.Store, tokenService *auth.TokenService, logger *slog.Logger) *SessionService {
	return &SessionService{
		store:        store,
		tokenService: tokenService,
		logger:       logger,
	}
}

// SessionResponse carries the token pair for a freshly created or refreshed
// session.
type SessionResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	SessionID    string    `json:"session_id"`
}

// CreateSession issues a token pair and persists the session.
func (s *SessionService) CreateSession(ctx context.Context, user *domain.User, userAgent string) (*SessionResponse, error) {
	accessToken, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokenService.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	sessionID, err := id.Generate("session")
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	session := &domain.Session{
		UserID:    user.ID,
		TokenHash: auth.HashRefreshToken(refreshToken),
		ExpiresAt: time.Now().Add(s.tokenService.RefreshTokenDuration()),
		UserAgent: userAgent,
	}
	session.ID = sessionID
	session.InitTimestamps()

	if err := s.store.Sessions.Create(ctx, sessionID, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &SessionResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(s.tokenService.AccessTokenDuration()),
		SessionID:    sessionID,
	}, nil
}

// RefreshSession rotates a refresh token: the presented token is matched
// against stored sessions, invalidated, and a new pair is issued.
func (s *SessionService) RefreshSession(ctx context.Context, refreshToken string) (*SessionResponse, *domain.User, error) {
	hash := auth.HashRefreshToken(refreshToken)

	var session *domain.Session
	for sess, err := range s.store.Sessions.List(ctx) {
		if err != nil {
			return nil, nil, fmt.Errorf("scan sessions: %w", err)
		}
		if sess.TokenHash == hash {
			session = sess
			break
		}
	}
	if session == nil {
		return nil, nil, apperrors.Unauthorized("invalid refresh token")
	}

	if session.Expired(time.Now()) {
		// Clean it up so the scan doesn't grow unboundedly.
		if err := s.store.Sessions.Delete(ctx, session.ID); err != nil && s.logger != nil {
			s.logger.Warn("Failed to delete expired session", "session_id", session.ID, "error", err)
		}
		return nil, nil, apperrors.TokenExpired("refresh token has expired")
	}

	user, err := s.store.Users.Get(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, apperrors.Unauthorized("user no longer exists")
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	// Rotation: old session goes away before the new pair is issued.
	if err := s.store.Sessions.Delete(ctx, session.ID); err != nil {
		return nil, nil, fmt.Errorf("delete session: %w", err)
	}

	resp, err := s.CreateSession(ctx, user, session.UserAgent)
	if err != nil {
		return nil, nil, err
	}
	return resp, user, nil
}

// DeleteSession revokes a session, invalidating its refresh token.
func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	return s.store.Sessions.Delete(ctx, sessionID)
}

// CleanupExpired deletes every session whose expiry has passed and returns
// how many were removed.
func (s *SessionService) CleanupExpired(ctx context.Context) (int, error) {
	now := time.Now()
	var expired []string
	for sess, err := range s.store.Sessions.List(ctx) {
		if err != nil {
			return 0, fmt.Errorf("scan sessions: %w", err)
		}
		if sess.Expired(now) {
			expired = append(expired, sess.ID)
		}
	}

	deleted := 0
	for _, sessionID := range expired {
		if err := s.store.Sessions.Delete(ctx, sessionID); err != nil {
			return deleted, fmt.Errorf("delete session %s: %w", sessionID, err)
		}
		deleted++
	}
	return deleted, nil
}

// DeleteUserSessions revokes every session belonging to a user.
func (s *SessionService) DeleteUserSessions(ctx context.Context, userID string) error {
	for sess, err := range s.store.Sessions.ListByIndex(ctx, "user", userID) {
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		if err := s.store.Sessions.Delete(ctx, sess.ID); err != nil {
			return fmt.Errorf("delete session %s: %w", sess.ID, err)
		}
	}
	return nil
}
