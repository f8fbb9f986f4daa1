package dto

import (
	"time"

	"github.com/spec-kit/user-service/internal/domain"
)

// CreateUserRequest payload for new users. Name defaults to the email's local part.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"omitempty,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

// LoginUserRequest payload for login.
type LoginUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public projection of a user.
type UserResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	AvatarPath *string   `json:"avatar_path,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewUserResponse projects user without its password hash.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		AvatarPath: user.AvatarPath,
		CreatedAt:  user.CreatedAt,
	}
}

// LoggedUserResponse is returned by login. ExpiresAt is omitted for tokens without expiry.
type LoggedUserResponse struct {
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// UploadAvatarResponse reports where the avatar was stored.
type UploadAvatarResponse struct {
	FilePath string `json:"filepath"`
}
