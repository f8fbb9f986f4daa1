package domain

// Credentials is the email/password pair presented on login. It is never persisted.
type Credentials struct {
	Email    string
	Password string
}

// TokenPayload is the identity claim bound into a session token.
type TokenPayload struct {
	ID    string
	Email string
}
