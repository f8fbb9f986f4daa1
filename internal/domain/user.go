package domain

import "time"

// User is the stored identity of a registered account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	AvatarPath   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserDraft carries the registration input before the password is hashed.
type UserDraft struct {
	Name     string
	Email    string
	Password string
}
