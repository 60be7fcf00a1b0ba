package trade

import (
	"context"

	"github.com/orders/backend/internal/domain/shared"
	"github.com/orders/backend/internal/domain/trade"
	"github.com/orders/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// OrderRecorder receives order metrics
type OrderRecorder interface {
	OrderPlaced()
	OrderTransitioned(to string)
}

type nopOrderRecorder struct{}

func (nopOrderRecorder) OrderPlaced()             {}
func (nopOrderRecorder) OrderTransitioned(string) {}

// OrderService places orders and moves them through their states
type OrderService struct {
	orders   trade.OrderRepository
	events   shared.EventPublisher
	recorder OrderRecorder
}

// NewOrderService creates a new order service
func NewOrderService(orders trade.OrderRepository, events shared.EventPublisher, recorder OrderRecorder) *OrderService {
	if recorder == nil {
		recorder = nopOrderRecorder{}
	}
	return &OrderService{
		orders:   orders,
		events:   events,
		recorder: recorder,
	}
}

// Place turns the caller's basket into a new order bound to contactID.
// Another user's order id reads as not found and changes nothing.
func (s *OrderService) Place(ctx context.Context, userID, orderID, contactID uint64) error {
	placed, err := s.orders.PlaceOrder(ctx, userID, orderID, contactID)
	if err != nil {
		return err
	}
	if !placed {
		logger.L(ctx).Info("Order placement matched no basket", zap.Uint64("order_id", orderID))
		return trade.ErrOrderNotFound
	}

	s.recorder.OrderPlaced()
	if err := s.events.Publish(ctx, trade.NewOrderPlacedEvent(orderID, userID, contactID)); err != nil {
		logger.L(ctx).Error("Failed to publish order placed event", zap.Uint64("order_id", orderID), zap.Error(err))
	}

	logger.L(ctx).Info("Order placed", zap.Uint64("order_id", orderID), zap.Uint64("contact_id", contactID))
	return nil
}

// List returns the caller's placed orders
func (s *OrderService) List(ctx context.Context, userID uint64) ([]OrderDTO, error) {
	orders, err := s.orders.FindUserOrders(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToOrderDTOs(orders), nil
}

// ShopOrders returns placed orders with at least one line from the caller's shop
func (s *OrderService) ShopOrders(ctx context.Context, ownerID uint64) ([]OrderDTO, error) {
	orders, err := s.orders.FindShopOrders(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return ToOrderDTOs(orders), nil
}

// Transition applies an administrative state change
func (s *OrderService) Transition(ctx context.Context, orderID uint64, target trade.OrderState) (*OrderDTO, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := order.State
	if err := order.TransitionTo(target); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateState(ctx, order, from); err != nil {
		return nil, err
	}

	s.recorder.OrderTransitioned(string(target))
	if err := s.events.Publish(ctx, order.GetDomainEvents()...); err != nil {
		logger.L(ctx).Error("Failed to publish order status event", zap.Uint64("order_id", orderID), zap.Error(err))
	}
	order.ClearDomainEvents()

	logger.L(ctx).Info("Order state changed",
		zap.Uint64("order_id", orderID),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
	)
	dto := ToOrderDTO(order)
	return &dto, nil
}
