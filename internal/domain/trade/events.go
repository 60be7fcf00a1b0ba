package trade

import (
	"github.com/orders/backend/internal/domain/shared"
)

// Event type constants for the trade context
const (
	EventTypeOrderPlaced        = "OrderPlaced"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	AggregateTypeOrder          = "Order"
)

// OrderPlacedEvent is published after a basket became a new order
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	UserID    uint64 `json:"user_id"`
	ContactID uint64 `json:"contact_id"`
}

// NewOrderPlacedEvent creates an OrderPlacedEvent
func NewOrderPlacedEvent(orderID, userID, contactID uint64) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, orderID),
		UserID:          userID,
		ContactID:       contactID,
	}
}

// OrderStatusChangedEvent is published on administrative state changes
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	UserID uint64     `json:"user_id"`
	From   OrderState `json:"from"`
	To     OrderState `json:"to"`
}

// NewOrderStatusChangedEvent creates an OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, from OrderState) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		UserID:          o.UserID,
		From:            from,
		To:              o.State,
	}
}
