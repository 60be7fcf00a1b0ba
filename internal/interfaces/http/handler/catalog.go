package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/orders/backend/internal/domain/catalog"
	"github.com/orders/backend/internal/domain/shared"
	"github.com/orders/backend/internal/interfaces/http/dto"
	"github.com/orders/backend/internal/interfaces/http/middleware"
)

// CatalogQueries reads the public catalog
type CatalogQueries interface {
	ListCategories(ctx context.Context, filter shared.Filter) (shared.Paginated[catalog.Category], error)
	ListShops(ctx context.Context, filter shared.Filter) (shared.Paginated[catalog.Shop], error)
	ListProducts(ctx context.Context, shopID, categoryID *uint64) ([]catalog.ProductVariant, error)
}

// ProductQuery narrows GET /products
type ProductQuery struct {
	ShopID     *uint64 `form:"shop_id" binding:"omitempty,min=1"`
	CategoryID *uint64 `form:"category_id" binding:"omitempty,min=1"`
}

// CatalogHandler serves the read-only catalog endpoints
type CatalogHandler struct {
	BaseHandler
	queries CatalogQueries
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(queries CatalogQueries) *CatalogHandler {
	return &CatalogHandler{queries: queries}
}

// Categories lists categories
func (h *CatalogHandler) Categories(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	page, err := h.queries.ListCategories(c.Request.Context(), req.Filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, page)
}

// Shops lists the shops currently accepting orders
func (h *CatalogHandler) Shops(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	page, err := h.queries.ListShops(c.Request.Context(), req.Filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, page)
}

// Products lists variants of open shops, optionally by shop and category
func (h *CatalogHandler) Products(c *gin.Context) {
	var q ProductQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	variants, err := h.queries.ListProducts(c.Request.Context(), q.ShopID, q.CategoryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, variants)
}

// RegisterRoutes registers the public catalog routes
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/categories", h.Categories)
	rg.GET("/shops", h.Shops)
	rg.GET("/products", h.Products)
}
