package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("p4ssw0rd", "salt", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotContains(t, hash, "p4ssw0rd")

	require.NoError(t, ComparePassword(hash, "p4ssw0rd", "salt"))
	require.Error(t, ComparePassword(hash, "wrong", "salt"))
	require.Error(t, ComparePassword(hash, "p4ssw0rd", "other-salt"))
}

func TestHashPassword_LongPasswords(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 200)
	hash, err := HashPassword(long, "salt", bcrypt.MinCost)
	require.NoError(t, err)

	require.NoError(t, ComparePassword(hash, long, "salt"))
	require.Error(t, ComparePassword(hash, long[:100], "salt"))
}
