package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	apptrade "github.com/orders/backend/internal/application/trade"
	"github.com/orders/backend/internal/domain/trade"
	"github.com/orders/backend/internal/interfaces/http/dto"
)

// BasketService manages the caller's open basket
type BasketService interface {
	Get(ctx context.Context, userID uint64) ([]apptrade.OrderDTO, error)
	AddLines(ctx context.Context, userID uint64, lines []trade.BasketLine) (*trade.AddLinesResult, error)
	UpdateLines(ctx context.Context, userID uint64, lines []trade.BasketLine) (int64, error)
	RemoveLines(ctx context.Context, userID uint64, raw string) (int64, error)
}

// BasketHandler handles /basket
type BasketHandler struct {
	BaseHandler
	baskets BasketService
}

// NewBasketHandler creates a new basket handler
func NewBasketHandler(baskets BasketService) *BasketHandler {
	return &BasketHandler{baskets: baskets}
}

// Get returns the basket with its lines and total, or an empty list
func (h *BasketHandler) Get(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	baskets, err := h.baskets.Get(c.Request.Context(), p.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, baskets)
}

// Add puts lines into the basket. Either every line is created or none is;
// a rejected batch reports the outcome of each line.
func (h *BasketHandler) Add(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req BasketLinesRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.baskets.AddLines(c.Request.Context(), p.UserID, req.Items)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Failed() {
		resp := dto.NewCreatedResponse(0)
		resp.Status = false
		resp.Errors = result.Outcomes
		h.OK(c, resp)
		return
	}
	h.OK(c, dto.NewCreatedResponse(result.Created))
}

// Update sets quantities of lines already in the basket
func (h *BasketHandler) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req BasketLinesRequest
	if !h.bind(c, &req) {
		return
	}

	n, err := h.baskets.UpdateLines(c.Request.Context(), p.UserID, req.Items)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.NewUpdatedResponse(n))
}

// Remove deletes basket lines by id
func (h *BasketHandler) Remove(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req IDListRequest
	if !h.bind(c, &req) {
		return
	}

	n, err := h.baskets.RemoveLines(c.Request.Context(), p.UserID, string(req.Items))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.NewDeletedResponse(n))
}

// RegisterRoutes registers /basket behind the given guards
func (h *BasketHandler) RegisterRoutes(rg *gin.RouterGroup, guards ...gin.HandlerFunc) {
	basket := rg.Group("/basket", guards...)
	basket.GET("", h.Get)
	basket.POST("", h.Add)
	basket.PUT("", h.Update)
	basket.DELETE("", h.Remove)
}
