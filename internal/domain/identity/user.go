package identity

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/orders/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserType is the role a user acts in
type UserType string

const (
	UserTypeShop  UserType = "shop"
	UserTypeBuyer UserType = "buyer"
)

// IsValid checks if the type is a known UserType
func (t UserType) IsValid() bool {
	return t == UserTypeShop || t == UserTypeBuyer
}

// Password cost for bcrypt
const bcryptCost = 12

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is an account of a shop partner or a buyer.
// Accounts are created inactive and activated by e-mail confirmation.
type User struct {
	shared.BaseAggregateRoot
	Email        string   `gorm:"type:varchar(254);not null;uniqueIndex" json:"email"`
	PasswordHash string   `gorm:"type:varchar(100);not null" json:"-"`
	FirstName    string   `gorm:"type:varchar(30)" json:"first_name"`
	LastName     string   `gorm:"type:varchar(30)" json:"last_name"`
	Company      string   `gorm:"type:varchar(40)" json:"company"`
	Position     string   `gorm:"type:varchar(40)" json:"position"`
	Type         UserType `gorm:"type:varchar(5);not null;default:'buyer'" json:"type"`
	IsActive     bool     `gorm:"not null;default:false" json:"-"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// Profile carries the editable account attributes; nil fields are left untouched
type Profile struct {
	FirstName *string
	LastName  *string
	Email     *string
	Company   *string
	Position  *string
}

// NewUser creates an inactive user. An empty userType defaults to buyer.
func NewUser(email, password string, userType UserType, profile Profile) (*User, error) {
	if userType == "" {
		userType = UserTypeBuyer
	}
	if !userType.IsValid() {
		return nil, shared.NewDomainError("INVALID_USER_TYPE", "User type must be shop or buyer")
	}
	profile.Email = &email

	u := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              userType,
	}
	if err := u.UpdateProfile(profile); err != nil {
		return nil, err
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateProfile applies every non-nil field of p
func (u *User) UpdateProfile(p Profile) error {
	if p.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*p.Email))
		if err := validateEmail(email); err != nil {
			return err
		}
		u.Email = email
	}
	fields := []struct {
		dst    *string
		src    *string
		name   string
		maxLen int
	}{
		{&u.FirstName, p.FirstName, "first_name", 30},
		{&u.LastName, p.LastName, "last_name", 30},
		{&u.Company, p.Company, "company", 40},
		{&u.Position, p.Position, "position", 40},
	}
	for _, f := range fields {
		if f.src == nil {
			continue
		}
		v := strings.TrimSpace(*f.src)
		if len([]rune(v)) > f.maxLen {
			return shared.NewDomainError("INVALID_INPUT", f.name+" is too long")
		}
		*f.dst = v
	}
	u.UpdatedAt = time.Now()
	return nil
}

// SetPassword validates and stores a new password hash
func (u *User) SetPassword(password string) error {
	if err := ValidatePassword(password, u.Email, u.FirstName, u.LastName); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// Activate marks the e-mail as confirmed
func (u *User) Activate() {
	u.IsActive = true
	u.UpdatedAt = time.Now()
}

// IsShop reports whether the user is a shop partner
func (u *User) IsShop() bool {
	return u.Type == UserTypeShop
}

// IsBuyer reports whether the user is a buyer
func (u *User) IsBuyer() bool {
	return u.Type == UserTypeBuyer
}

// FullName returns "first last", trimmed
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "12345678": {}, "123456789": {}, "qwertyuiop": {},
	"qwerty123": {}, "iloveyou": {}, "11111111": {}, "abc12345": {}, "sunshine": {},
	"1q2w3e4r": {}, "princess": {}, "football": {}, "baseball": {}, "welcome1": {},
}

// ValidatePassword applies the account password policy: 8 to 128
// characters, not only digits, not a common password and not
// containing the user's e-mail name or first/last name.
func ValidatePassword(password string, attributes ...string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}
	if strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be entirely numeric")
	}
	lower := strings.ToLower(password)
	if _, ok := commonPasswords[lower]; ok {
		return shared.NewDomainError("INVALID_PASSWORD", "Password is too common")
	}
	for _, attr := range attributes {
		attr = strings.ToLower(strings.TrimSpace(attr))
		if at := strings.IndexByte(attr, '@'); at >= 0 {
			attr = attr[:at]
		}
		if len(attr) >= 4 && strings.Contains(lower, attr) {
			return shared.NewDomainError("INVALID_PASSWORD", "Password is too similar to the account details")
		}
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 254 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 254 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
