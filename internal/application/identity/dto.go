package identity

import (
	"time"

	"github.com/orders/backend/internal/domain/identity"
	"github.com/orders/backend/internal/domain/shared"
)

// Account errors
var (
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	ErrAccountInactive    = shared.NewDomainError("ACCOUNT_INACTIVE", "Account email is not confirmed")
	ErrInvalidToken       = shared.NewDomainError("INVALID_TOKEN", "Wrong token or email")
	ErrEmailTaken         = shared.NewDomainError("ALREADY_EXISTS", "User with this email already exists")
)

// RegisterInput carries a registration request
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Company   string
	Position  string
	Type      identity.UserType
}

// UpdateDetailsInput carries a partial account update; nil fields are kept
type UpdateDetailsInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Company   *string
	Position  *string
	Password  *string
}

// UserDTO is the account as returned to its owner
type UserDTO struct {
	ID        uint64            `json:"id"`
	Email     string            `json:"email"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	Company   string            `json:"company"`
	Position  string            `json:"position"`
	Type      identity.UserType `json:"type"`
}

// ToUserDTO converts a domain user
func ToUserDTO(u *identity.User) *UserDTO {
	return &UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Company:   u.Company,
		Position:  u.Position,
		Type:      u.Type,
	}
}

// LoginResult is a successful login
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *UserDTO
}

// Principal is the authenticated caller of a request
type Principal struct {
	UserID    uint64
	UserType  identity.UserType
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsShop reports whether the caller acts as a shop partner
func (p *Principal) IsShop() bool {
	return p.UserType == identity.UserTypeShop
}

// IsBuyer reports whether the caller acts as a buyer
func (p *Principal) IsBuyer() bool {
	return p.UserType == identity.UserTypeBuyer
}
