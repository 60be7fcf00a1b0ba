package identity

import (
	"github.com/orders/backend/internal/domain/shared"
)

// Aggregate type constant for User
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserRegistered         = "UserRegistered"
	EventTypePasswordResetRequested = "PasswordResetRequested"
)

// UserRegisteredEvent is published when an account was created; it carries
// the confirmation token to be mailed.
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
	Token string `json:"-"`
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent
func NewUserRegisteredEvent(user *User, token *OneTimeToken) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, AggregateTypeUser, user.ID),
		Email:           user.Email,
		Token:           token.Key,
	}
}

// PasswordResetRequestedEvent is published when a reset token was issued
type PasswordResetRequestedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
	Token string `json:"-"`
}

// NewPasswordResetRequestedEvent creates a new PasswordResetRequestedEvent
func NewPasswordResetRequestedEvent(user *User, token *OneTimeToken) *PasswordResetRequestedEvent {
	return &PasswordResetRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePasswordResetRequested, AggregateTypeUser, user.ID),
		Email:           user.Email,
		Token:           token.Key,
	}
}
