package trade

import (
	"strings"

	"github.com/orders/backend/internal/domain/shared"
)

// Contact is a buyer's delivery address and phone
type Contact struct {
	shared.BaseEntity
	UserID    uint64 `gorm:"not null;index" json:"-"`
	City      string `gorm:"type:varchar(50);not null" json:"city"`
	Street    string `gorm:"type:varchar(100);not null" json:"street"`
	House     string `gorm:"type:varchar(15)" json:"house"`
	Building  string `gorm:"type:varchar(15)" json:"building"`
	Apartment string `gorm:"type:varchar(15)" json:"apartment"`
	Phone     string `gorm:"type:varchar(20);not null" json:"phone"`
}

// TableName returns the table name for GORM
func (Contact) TableName() string {
	return "contacts"
}

// ContactFields carries the user supplied contact attributes
type ContactFields struct {
	City      *string
	Street    *string
	House     *string
	Building  *string
	Apartment *string
	Phone     *string
}

// NewContact creates a contact; city, street and phone are required
func NewContact(userID uint64, f ContactFields) (*Contact, error) {
	c := &Contact{BaseEntity: shared.NewBaseEntity(), UserID: userID}
	if f.City == nil || f.Street == nil || f.Phone == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "city, street and phone are required")
	}
	if err := c.Apply(f); err != nil {
		return nil, err
	}
	return c, nil
}

// Apply updates every field present in f
func (c *Contact) Apply(f ContactFields) error {
	set := func(dst *string, src *string, name string, maxLen int, required bool) error {
		if src == nil {
			return nil
		}
		v := strings.TrimSpace(*src)
		if required && v == "" {
			return shared.NewDomainError("INVALID_INPUT", name+" cannot be empty")
		}
		if len([]rune(v)) > maxLen {
			return shared.NewDomainError("INVALID_INPUT", name+" is too long")
		}
		*dst = v
		return nil
	}
	if err := set(&c.City, f.City, "city", 50, true); err != nil {
		return err
	}
	if err := set(&c.Street, f.Street, "street", 100, true); err != nil {
		return err
	}
	if err := set(&c.House, f.House, "house", 15, false); err != nil {
		return err
	}
	if err := set(&c.Building, f.Building, "building", 15, false); err != nil {
		return err
	}
	if err := set(&c.Apartment, f.Apartment, "apartment", 15, false); err != nil {
		return err
	}
	return set(&c.Phone, f.Phone, "phone", 20, true)
}
