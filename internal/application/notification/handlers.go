package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/orders/backend/internal/domain/identity"
	"github.com/orders/backend/internal/domain/shared"
	"github.com/orders/backend/internal/domain/trade"
	"github.com/orders/backend/internal/infrastructure/mail"
	"go.uber.org/zap"
)

// AccountMailer sends the confirmation and password reset mails
type AccountMailer struct {
	sender mail.Sender
	logger *zap.Logger
}

// NewAccountMailer creates a handler for account events
func NewAccountMailer(sender mail.Sender, logger *zap.Logger) *AccountMailer {
	return &AccountMailer{sender: sender, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *AccountMailer) EventTypes() []string {
	return []string{identity.EventTypeUserRegistered, identity.EventTypePasswordResetRequested}
}

// Handle renders and sends the mail for one account event
func (h *AccountMailer) Handle(ctx context.Context, event shared.DomainEvent) error {
	var (
		msg mail.Message
		err error
	)
	switch e := event.(type) {
	case *identity.UserRegisteredEvent:
		msg, err = mail.ConfirmEmail(e.Email, "", e.Token)
	case *identity.PasswordResetRequestedEvent:
		msg, err = mail.PasswordReset(e.Email, e.Token)
	default:
		h.logger.Error("unexpected event type", zap.String("actual", event.EventType()))
		return nil
	}
	if err != nil {
		return err
	}

	if err := h.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s mail to user %d: %w", event.EventType(), event.AggregateID(), err)
	}
	h.logger.Info("account mail sent",
		zap.String("event_type", event.EventType()),
		zap.Uint64("user_id", event.AggregateID()),
	)
	return nil
}

// OrderMailer mails the buyer when an order is placed or changes state
type OrderMailer struct {
	orders trade.OrderRepository
	users  identity.UserRepository
	sender mail.Sender
	logger *zap.Logger
}

// NewOrderMailer creates a handler for order events
func NewOrderMailer(orders trade.OrderRepository, users identity.UserRepository, sender mail.Sender, logger *zap.Logger) *OrderMailer {
	return &OrderMailer{
		orders: orders,
		users:  users,
		sender: sender,
		logger: logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderMailer) EventTypes() []string {
	return []string{trade.EventTypeOrderPlaced, trade.EventTypeOrderStatusChanged}
}

// Handle loads the order and its buyer and sends the matching mail
func (h *OrderMailer) Handle(ctx context.Context, event shared.DomainEvent) error {
	var (
		userID   uint64
		previous trade.OrderState
	)
	switch e := event.(type) {
	case *trade.OrderPlacedEvent:
		userID = e.UserID
	case *trade.OrderStatusChangedEvent:
		userID = e.UserID
		previous = e.From
	default:
		h.logger.Error("unexpected event type", zap.String("actual", event.EventType()))
		return nil
	}

	order, err := h.orders.FindByID(ctx, event.AggregateID())
	if err != nil {
		return fmt.Errorf("load order %d: %w", event.AggregateID(), err)
	}
	user, err := h.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user %d: %w", userID, err)
	}

	view := OrderView(order)
	var msg mail.Message
	if previous == "" {
		msg, err = mail.OrderPlaced(user.Email, view)
	} else {
		view.Previous = string(previous)
		msg, err = mail.OrderStatusChanged(user.Email, view)
	}
	if err != nil {
		return err
	}

	if err := h.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send order %d mail: %w", order.ID, err)
	}
	h.logger.Info("order mail sent",
		zap.Uint64("order_id", order.ID),
		zap.String("state", string(order.State)),
	)
	return nil
}

// OrderView flattens an order for the mail templates
func OrderView(o *trade.Order) mail.OrderView {
	view := mail.OrderView{
		ID:      o.ID,
		State:   string(o.State),
		Address: address(o.Contact),
		Lines:   make([]mail.OrderLineView, 0, len(o.Lines)),
		Total:   o.Total(),
	}
	for i := range o.Lines {
		line := &o.Lines[i]
		lv := mail.OrderLineView{Quantity: line.Quantity, Amount: line.Amount()}
		if v := line.Variant; v != nil {
			lv.Model = v.Model
			lv.Price = v.Price
			if v.Product != nil {
				lv.Name = v.Product.Name
			}
			if v.Shop != nil {
				lv.Shop = v.Shop.Name
			}
		}
		view.Lines = append(view.Lines, lv)
	}
	return view
}

func address(c *trade.Contact) string {
	if c == nil {
		return ""
	}
	parts := []string{c.City, c.Street}
	for _, p := range []struct{ prefix, value string }{
		{"house ", c.House},
		{"building ", c.Building},
		{"apt. ", c.Apartment},
	} {
		if p.value != "" {
			parts = append(parts, p.prefix+p.value)
		}
	}
	addr := strings.Join(parts, ", ")
	if c.Phone != "" {
		addr += " (" + c.Phone + ")"
	}
	return addr
}

var (
	_ shared.EventHandler = (*AccountMailer)(nil)
	_ shared.EventHandler = (*OrderMailer)(nil)
)
