package identity

import (
	"context"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// Update updates an existing user
	Update(ctx context.Context, user *User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*User, error)

	// FindByEmail finds a user by e-mail, case insensitive
	FindByEmail(ctx context.Context, email string) (*User, error)

	// ExistsByEmail checks if an email already exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// TokenRepository defines the interface for one-time token persistence
type TokenRepository interface {
	// Replace stores token, removing the user's previous token of the same purpose
	Replace(ctx context.Context, token *OneTimeToken) error

	// Find loads the user's token for purpose
	Find(ctx context.Context, userID uint64, purpose TokenPurpose) (*OneTimeToken, error)

	// Delete removes the user's token for purpose
	Delete(ctx context.Context, userID uint64, purpose TokenPurpose) error
}
