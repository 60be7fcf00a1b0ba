package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	apptrade "github.com/orders/backend/internal/application/trade"
	"github.com/orders/backend/internal/domain/catalog"
	"github.com/orders/backend/internal/interfaces/http/dto"
)

// PartnerService is the shop owner's view of their shop
type PartnerService interface {
	RequestUpdate(ctx context.Context, ownerID uint64, rawURL string) error
	GetState(ctx context.Context, ownerID uint64) (*catalog.Shop, error)
	SetState(ctx context.Context, ownerID uint64, state bool) error
}

// ShopOrderLister lists the orders that contain a shop's goods
type ShopOrderLister interface {
	ShopOrders(ctx context.Context, ownerID uint64) ([]apptrade.OrderDTO, error)
}

// PartnerUpdateRequest is the body of POST /partner/update
type PartnerUpdateRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// PartnerStateRequest is the body of POST /partner/state
type PartnerStateRequest struct {
	State dto.FlexibleBool `json:"state"`
}

// PartnerHandler handles the /partner endpoints
type PartnerHandler struct {
	BaseHandler
	partners PartnerService
	orders   ShopOrderLister
}

// NewPartnerHandler creates a new partner handler
func NewPartnerHandler(partners PartnerService, orders ShopOrderLister) *PartnerHandler {
	return &PartnerHandler{partners: partners, orders: orders}
}

// Update schedules a catalog import from the given feed URL
func (h *PartnerHandler) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req PartnerUpdateRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.partners.RequestUpdate(c.Request.Context(), p.UserID, req.URL); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c)
}

// GetState returns the caller's shop
func (h *PartnerHandler) GetState(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	shop, err := h.partners.GetState(c.Request.Context(), p.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, shop)
}

// SetState opens or closes the caller's shop for orders
func (h *PartnerHandler) SetState(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req PartnerStateRequest
	if !h.bind(c, &req) {
		return
	}
	if !req.State.Set {
		h.missing(c, "state")
		return
	}

	if err := h.partners.SetState(c.Request.Context(), p.UserID, req.State.Value); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Done(c)
}

// Orders lists placed orders containing the caller's goods
func (h *PartnerHandler) Orders(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	orders, err := h.orders.ShopOrders(c.Request.Context(), p.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, orders)
}

// RegisterRoutes registers the /partner routes behind the given guards
func (h *PartnerHandler) RegisterRoutes(rg *gin.RouterGroup, guards ...gin.HandlerFunc) {
	partner := rg.Group("/partner", guards...)
	partner.POST("/update", h.Update)
	partner.GET("/state", h.GetState)
	partner.POST("/state", h.SetState)
	partner.GET("/orders", h.Orders)
}
