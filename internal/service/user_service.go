package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/events"
	"github.com/spec-kit/user-service/internal/repository"
	apperrors "github.com/spec-kit/user-service/pkg/util/errorutil"
)

const userServiceOrigin = "UserService"

// UserService is the credential store used by handlers and gates.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// NewUserService builds the service. dispatcher may be nil.
func NewUserService(users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger, bcryptCost int) *UserService {
	return &UserService{users: users, dispatcher: dispatcher, logger: logger, bcryptCost: bcryptCost}
}

// FindByEmail returns the user owning email, or nil when there is none.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create hashes the draft password with salt and stores a new user.
// The store's uniqueness check is authoritative; a lost race surfaces as Conflict.
func (s *UserService) Create(ctx context.Context, draft domain.UserDraft, salt string) (*domain.User, error) {
	hash, err := auth.HashPassword(draft.Password, salt, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(draft.Name),
		Email:        normalizeEmail(draft.Email),
		PasswordHash: hash,
	}
	if user.Name == "" {
		user.Name, _, _ = strings.Cut(user.Email, "@")
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, EmailConflict(user.Email).WithOrigin(userServiceOrigin)
		}
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.EventUserRegistered, user.ID, events.UserRegisteredPayload{
		Email: user.Email,
		Name:  user.Name,
	}))
	return user, nil
}

// Exists reports whether a user with id is stored.
func (s *UserService) Exists(ctx context.Context, id string) (bool, error) {
	return s.users.Exists(ctx, id)
}

// UpdateAvatar records the stored avatar path on the user.
func (s *UserService) UpdateAvatar(ctx context.Context, id, avatarPath string) error {
	if err := s.users.UpdateAvatar(ctx, id, avatarPath); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("User", map[string]any{"id": id}).WithOrigin(userServiceOrigin)
		}
		return err
	}
	s.publish(ctx, events.NewEvent(events.EventUserAvatarUpdated, id, events.UserAvatarUpdatedPayload{
		AvatarPath: avatarPath,
	}))
	return nil
}

// EmailConflict is the error returned when email is already registered.
func EmailConflict(email string) *apperrors.DomainError {
	return apperrors.NewConflict(fmt.Sprintf("User with email «%s» exists.", email), nil)
}

func (s *UserService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.String("user_id", event.UserID),
			zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
