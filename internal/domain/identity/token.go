package identity

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/orders/backend/internal/domain/shared"
)

// TokenPurpose tells what a one-time token is for
type TokenPurpose string

const (
	TokenPurposeConfirmEmail  TokenPurpose = "confirm_email"
	TokenPurposePasswordReset TokenPurpose = "password_reset"
)

// tokenKeyBytes yields a 64 character hex key
const tokenKeyBytes = 32

// OneTimeToken is an e-mailed secret. A user holds at most one token per purpose.
type OneTimeToken struct {
	ID        uint64       `gorm:"primaryKey;autoIncrement"`
	UserID    uint64       `gorm:"not null;uniqueIndex:idx_token_user_purpose"`
	Purpose   TokenPurpose `gorm:"type:varchar(20);not null;uniqueIndex:idx_token_user_purpose"`
	Key       string       `gorm:"type:varchar(64);not null;uniqueIndex"`
	CreatedAt time.Time    `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OneTimeToken) TableName() string {
	return "one_time_tokens"
}

// NewOneTimeToken creates a token with a random key
func NewOneTimeToken(userID uint64, purpose TokenPurpose) (*OneTimeToken, error) {
	buf := make([]byte, tokenKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, shared.NewDomainError("TOKEN_GENERATION_ERROR", "Failed to generate token")
	}
	return &OneTimeToken{
		UserID:    userID,
		Purpose:   purpose,
		Key:       hex.EncodeToString(buf),
		CreatedAt: time.Now(),
	}, nil
}

// Matches compares key in constant time
func (t *OneTimeToken) Matches(key string) bool {
	return subtle.ConstantTimeCompare([]byte(t.Key), []byte(key)) == 1
}

// IsExpired reports whether the token is older than ttl. A zero ttl never expires.
func (t *OneTimeToken) IsExpired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(t.CreatedAt) > ttl
}
