package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/repository"
	apperrors "github.com/spec-kit/user-service/pkg/util/errorutil"
)

const authServiceOrigin = "AuthService"

// AuthService verifies credentials and issues session tokens.
type AuthService struct {
	users    repository.UserRepository
	tokenMgr *auth.TokenManager
	salt     string
}

// NewAuthService builds the service.
func NewAuthService(users repository.UserRepository, tokenMgr *auth.TokenManager, salt string) *AuthService {
	return &AuthService{users: users, tokenMgr: tokenMgr, salt: salt}
}

// Verify checks credentials against the stored hash. Unknown emails and wrong passwords
// produce the same Unauthorized error.
func (s *AuthService) Verify(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(creds.Email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, invalidCredentials()
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, creds.Password, s.salt); err != nil {
		return nil, invalidCredentials()
	}
	return user, nil
}

// Authenticate issues a session token bound to the user's id and email.
func (s *AuthService) Authenticate(user *domain.User) (string, time.Time, error) {
	return s.tokenMgr.Issue(domain.TokenPayload{ID: user.ID, Email: user.Email})
}

// VerifyToken resolves a bearer token into its identity claim.
func (s *AuthService) VerifyToken(token string) (*domain.TokenPayload, error) {
	payload, err := s.tokenMgr.Verify(token)
	if err != nil {
		return nil, apperrors.NewInvalidToken(err).WithOrigin(authServiceOrigin)
	}
	return payload, nil
}

func invalidCredentials() error {
	return apperrors.NewUnauthorized("incorrect email or password").WithOrigin(authServiceOrigin)
}
