package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const (
	VerifyEmailTemplate   = "verify_email.html"
	ResetPasswordTemplate = "reset_password.html"
)

// AccountEmailData is what the verification and password reset templates render.
type AccountEmailData struct {
	StoreName   string
	Name        string
	Message     string
	ActionURL   string
	ActionLabel string
}

// GenerateCode returns n random bytes, hex encoded.
func GenerateCode(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashToken is the digest stored in place of an emailed token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
