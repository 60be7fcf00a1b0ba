package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/orders/backend/internal/domain/trade"
	"github.com/orders/backend/internal/interfaces/http/dto"
)

// ContactService manages delivery contacts
type ContactService interface {
	List(ctx context.Context, userID uint64) ([]trade.Contact, error)
	Create(ctx context.Context, userID uint64, fields trade.ContactFields) (*trade.Contact, error)
	Update(ctx context.Context, userID, id uint64, fields trade.ContactFields) (*trade.Contact, error)
	Delete(ctx context.Context, userID uint64, raw string) (int64, error)
}

// ContactHandler handles /contact
type ContactHandler struct {
	BaseHandler
	contacts ContactService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contacts ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// List returns the caller's contacts
func (h *ContactHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	contacts, err := h.contacts.List(c.Request.Context(), p.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, contacts)
}

// Create adds a contact
func (h *ContactHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req ContactRequest
	if !h.bind(c, &req) {
		return
	}

	if _, err := h.contacts.Create(c.Request.Context(), p.UserID, req.Fields()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Done(c)
}

// Update changes the given fields of one of the caller's contacts
func (h *ContactHandler) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req ContactRequest
	if !h.bind(c, &req) {
		return
	}
	if req.ID == 0 {
		h.missing(c, "id")
		return
	}

	if _, err := h.contacts.Update(c.Request.Context(), p.UserID, uint64(req.ID), req.Fields()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Done(c)
}

// Delete removes contacts by id
func (h *ContactHandler) Delete(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req IDListRequest
	if !h.bind(c, &req) {
		return
	}

	n, err := h.contacts.Delete(c.Request.Context(), p.UserID, string(req.Items))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.NewDeletedResponse(n))
}

// RegisterRoutes registers /contact behind the given guards
func (h *ContactHandler) RegisterRoutes(rg *gin.RouterGroup, guards ...gin.HandlerFunc) {
	contact := rg.Group("/contact", guards...)
	contact.GET("", h.List)
	contact.POST("", h.Create)
	contact.PUT("", h.Update)
	contact.DELETE("", h.Delete)
}
