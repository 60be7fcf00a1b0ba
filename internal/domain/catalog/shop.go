package catalog

import (
	"strings"
	"time"

	"github.com/orders/backend/internal/domain/shared"
)

// MaxShopNameLength bounds Shop.Name
const MaxShopNameLength = 50

// Shop is a partner's storefront. A user owns at most one shop and the
// shop owns every ProductVariant listed under it.
type Shop struct {
	shared.BaseAggregateRoot
	Name   string  `gorm:"type:varchar(50);not null;uniqueIndex" json:"name"`
	URL    string  `gorm:"type:varchar(500)" json:"url,omitempty"`
	UserID *uint64 `gorm:"uniqueIndex" json:"-"`
	State  bool    `gorm:"not null;default:true" json:"state"`
}

// TableName returns the table name for GORM
func (Shop) TableName() string {
	return "shops"
}

// NewShop creates a shop accepting orders, owned by ownerID
func NewShop(name string, ownerID uint64) (*Shop, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_SHOP_NAME", "Shop name cannot be empty")
	}
	if len([]rune(name)) > MaxShopNameLength {
		return nil, shared.NewDomainError("INVALID_SHOP_NAME", "Shop name cannot exceed 50 characters")
	}
	owner := ownerID
	return &Shop{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		UserID:            &owner,
		State:             true,
	}, nil
}

// IsOwnedBy reports whether userID owns the shop
func (s *Shop) IsOwnedBy(userID uint64) bool {
	return s.UserID != nil && *s.UserID == userID
}

// SetState switches order acceptance on or off
func (s *Shop) SetState(state bool) {
	if s.State == state {
		return
	}
	s.State = state
	s.UpdatedAt = time.Now()
	s.AddDomainEvent(NewShopStateChangedEvent(s))
}
