package service

import (
	"context"

	"github.com/godilite/mind-compass/internal/repository/models"
	"go.uber.org/zap"
)

// IdentityService resolves the anonymous session events are stamped with.
type IdentityService struct {
	provider IdentityProvider
	logger   *zap.Logger
}

func NewIdentityService(provider IdentityProvider, logger *zap.Logger) *IdentityService {
	if provider == nil {
		panic("identity provider must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{provider: provider, logger: logger.Named("identity")}
}

// Ensure returns the session behind token, creating an anonymous one when
// the token is empty or unknown. It returns nil when no session can be
// obtained; callers continue without a user reference.
func (s *IdentityService) Ensure(ctx context.Context, token string) *models.Session {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if token != "" {
		session, err := s.provider.CurrentSession(dbCtx, token)
		if err == nil {
			return &session
		}
		s.logger.Debug("session lookup failed, creating a new one", zap.Error(err))
	}

	session, err := s.provider.CreateAnonymousSession(dbCtx)
	if err != nil {
		s.logger.Error("anonymous sign-in failed", zap.Error(err))
		return nil
	}
	return &session
}
