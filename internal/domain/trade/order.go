package trade

import (
	"fmt"
	"time"

	"github.com/orders/backend/internal/domain/catalog"
	"github.com/orders/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderState represents the lifecycle state of an order
type OrderState string

const (
	OrderStateBasket    OrderState = "basket"
	OrderStateNew       OrderState = "new"
	OrderStateConfirmed OrderState = "confirmed"
	OrderStateAssembled OrderState = "assembled"
	OrderStateSent      OrderState = "sent"
	OrderStateDelivered OrderState = "delivered"
	OrderStateCanceled  OrderState = "canceled"
)

// IsValid checks if the state is a known OrderState
func (s OrderState) IsValid() bool {
	switch s {
	case OrderStateBasket, OrderStateNew, OrderStateConfirmed, OrderStateAssembled,
		OrderStateSent, OrderStateDelivered, OrderStateCanceled:
		return true
	}
	return false
}

// String returns the string representation of OrderState
func (s OrderState) String() string {
	return string(s)
}

// IsTerminal reports whether no transition leaves the state
func (s OrderState) IsTerminal() bool {
	return s == OrderStateDelivered || s == OrderStateCanceled
}

// CanTransitionTo checks if a transition to target is allowed.
// Orders move forward one step at a time; cancel is allowed from any
// non-terminal state.
func (s OrderState) CanTransitionTo(target OrderState) bool {
	if target == OrderStateCanceled {
		return !s.IsTerminal()
	}
	switch s {
	case OrderStateBasket:
		return target == OrderStateNew
	case OrderStateNew:
		return target == OrderStateConfirmed
	case OrderStateConfirmed:
		return target == OrderStateAssembled
	case OrderStateAssembled:
		return target == OrderStateSent
	case OrderStateSent:
		return target == OrderStateDelivered
	}
	return false
}

// OrderLine is one variant in an order, unique by (order, variant)
type OrderLine struct {
	shared.BaseEntity
	OrderID   uint64                  `gorm:"not null;uniqueIndex:idx_order_line_variant" json:"order"`
	VariantID uint64                  `gorm:"not null;uniqueIndex:idx_order_line_variant" json:"-"`
	Quantity  int                     `gorm:"not null" json:"quantity"`
	Variant   *catalog.ProductVariant `gorm:"constraint:OnDelete:CASCADE" json:"product_info,omitempty"`
}

// TableName returns the table name for GORM
func (OrderLine) TableName() string {
	return "order_lines"
}

// Amount returns quantity x price, zero when the variant is not loaded
func (l *OrderLine) Amount() decimal.Decimal {
	if l.Variant == nil {
		return decimal.Zero
	}
	return l.Variant.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is either the user's basket or a placed order
type Order struct {
	shared.BaseAggregateRoot
	UserID    uint64      `gorm:"not null;index" json:"-"`
	State     OrderState  `gorm:"type:varchar(15);not null;default:'basket'" json:"state"`
	ContactID *uint64     `gorm:"index" json:"-"`
	Contact   *Contact    `gorm:"constraint:OnDelete:SET NULL" json:"contact,omitempty"`
	Lines     []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"ordered_items"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewBasket creates an empty basket for a user
func NewBasket(userID uint64) *Order {
	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		State:             OrderStateBasket,
		Lines:             make([]OrderLine, 0),
	}
}

// IsBasket reports whether the order is still a mutable basket
func (o *Order) IsBasket() bool {
	return o.State == OrderStateBasket
}

// Total returns the sum of quantity x price over loaded lines
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Lines {
		total = total.Add(o.Lines[i].Amount())
	}
	return total
}

// TransitionTo moves the order to target, recording an OrderStatusChanged event
func (o *Order) TransitionTo(target OrderState) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Unknown order state %q", target))
	}
	if !o.State.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot move order from %s to %s", o.State, target))
	}
	if o.State == OrderStateBasket {
		return shared.NewDomainError("INVALID_STATE", "A basket is placed through order placement")
	}
	from := o.State
	o.State = target
	o.UpdatedAt = time.Now()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from))
	return nil
}
