package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with the service salt and configured cost.
func HashPassword(password, salt string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(salted(password, salt), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain, salt string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), salted(plain, salt))
}

// salted keeps the bcrypt input at 64 bytes regardless of password length.
func salted(password, salt string) []byte {
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(password))
	return []byte(hex.EncodeToString(mac.Sum(nil)))
}
