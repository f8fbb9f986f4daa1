package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/user-service/internal/domain"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager. A non-positive ttl issues tokens without expiry.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	tm := &TokenManager{secret: []byte(secret), now: time.Now}
	if ttlMinutes > 0 {
		tm.ttl = time.Duration(ttlMinutes) * time.Minute
	}
	return tm
}

// Claims describes JWT payload.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issue builds and signs a JWT for the identity. expiresAt is zero when tokens do not expire.
func (tm *TokenManager) Issue(payload domain.TokenPayload) (string, time.Time, error) {
	now := tm.now()
	claims := &Claims{
		Email: payload.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  payload.ID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}

	var expiresAt time.Time
	if tm.ttl > 0 {
		expiresAt = now.Add(tm.ttl)
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify validates the token and returns the identity it was issued for.
// Every failure wraps ErrInvalidToken.
func (tm *TokenManager) Verify(tokenStr string) (*domain.TokenPayload, error) {
	if tokenStr == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid claims", ErrInvalidToken)
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: missing identity", ErrInvalidToken)
	}
	return &domain.TokenPayload{ID: claims.Subject, Email: claims.Email}, nil
}
