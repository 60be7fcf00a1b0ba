package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	apptrade "github.com/orders/backend/internal/application/trade"
)

// OrderService places and lists the buyer's orders
type OrderService interface {
	Place(ctx context.Context, userID, orderID, contactID uint64) error
	List(ctx context.Context, userID uint64) ([]apptrade.OrderDTO, error)
}

// OrderHandler handles /order
type OrderHandler struct {
	BaseHandler
	orders OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// List returns the caller's placed orders, newest first
func (h *OrderHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	orders, err := h.orders.List(c.Request.Context(), p.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, orders)
}

// Place turns the caller's basket into a new order delivered to the given contact
func (h *OrderHandler) Place(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req PlaceOrderRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.orders.Place(c.Request.Context(), p.UserID, uint64(req.ID), uint64(req.Contact)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Done(c)
}

// RegisterRoutes registers /order behind the given guards
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup, guards ...gin.HandlerFunc) {
	order := rg.Group("/order", guards...)
	order.GET("", h.List)
	order.POST("", h.Place)
}
