package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/user-service/internal/domain"
)

var alice = domain.TokenPayload{ID: "5f0c6a4e-8c1f-4a37-9d55-2b1d0a3e9c11", Email: "alice@example.com"}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("super-secret", 60)
	tok, exp, err := tm.Issue(alice)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	got, err := tm.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, alice, *got)
}

func TestIssue_WithoutExpiry(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("super-secret", 0)
	tok, exp, err := tm.Issue(alice)
	require.NoError(t, err)
	assert.True(t, exp.IsZero())

	tm.now = func() time.Time { return time.Now().Add(10 * 365 * 24 * time.Hour) }
	got, err := tm.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, alice.Email, got.Email)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", 1)
	tok, _, err := tm.Issue(alice)
	require.NoError(t, err)

	tm.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tm.Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, _, err := NewTokenManager("right-secret", 60).Issue(alice)
	require.NoError(t, err)

	_, err = NewTokenManager("wrong-secret", 60).Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("k", 60)
	for _, raw := range []string{"", "not.a.jwt", "abc", "a.b.c.d"} {
		_, err := tm.Verify(raw)
		require.ErrorIs(t, err, ErrInvalidToken, raw)
	}
}

func TestVerify_AnyTamperedByteFails(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", 60)
	tok, _, err := tm.Issue(alice)
	require.NoError(t, err)

	for i := 0; i < len(tok); i++ {
		b := []byte(tok)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		_, err := tm.Verify(string(b))
		require.ErrorIs(t, err, ErrInvalidToken, "tampered index %d", i)
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := &Claims{Email: alice.Email, RegisteredClaims: jwt.RegisteredClaims{Subject: alice.ID}}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", 60).Verify(unsigned)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_MissingIdentity(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", 60)
	tok, _, err := tm.Issue(domain.TokenPayload{ID: alice.ID})
	require.NoError(t, err)

	_, err = tm.Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}
