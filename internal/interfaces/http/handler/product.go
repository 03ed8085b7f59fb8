package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// ProductHandler handles product listing HTTP requests
type ProductHandler struct {
	BaseHandler
	productService *catalog.ProductService
	catalogCfg     config.CatalogConfig
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *catalog.ProductService, catalogCfg config.CatalogConfig) *ProductHandler {
	if catalogCfg.DefaultPageSize <= 0 {
		catalogCfg.DefaultPageSize = 10
	}
	if catalogCfg.MaxPageSize < catalogCfg.DefaultPageSize {
		catalogCfg.MaxPageSize = 100
	}
	return &ProductHandler{productService: productService, catalogCfg: catalogCfg}
}

// RegisterRoutes registers the product endpoints
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/products")
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
	}
}

// ListProductsQuery holds the listing query parameters
type ListProductsQuery struct {
	Page       int      `form:"page"`
	Limit      int      `form:"limit"`
	Search     string   `form:"search"`
	SortBy     string   `form:"sortBy"`
	Order      string   `form:"order"`
	MinPrice   *float64 `form:"minPrice"`
	MaxPrice   *float64 `form:"maxPrice"`
	Categories string   `form:"categories"`
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	var query ListProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	limit := query.Limit
	if limit <= 0 {
		limit = h.catalogCfg.DefaultPageSize
	}
	if limit > h.catalogCfg.MaxPageSize {
		limit = h.catalogCfg.MaxPageSize
	}

	input := catalog.ListProductsInput{
		Page:   query.Page,
		Limit:  limit,
		Search: query.Search,
		SortBy: query.SortBy,
		Order:  query.Order,
	}
	if query.MinPrice != nil {
		min := decimal.NewFromFloat(*query.MinPrice)
		input.MinPrice = &min
	}
	if query.MaxPrice != nil {
		max := decimal.NewFromFloat(*query.MaxPrice)
		input.MaxPrice = &max
	}
	if query.Categories != "" {
		for _, category := range strings.Split(query.Categories, ",") {
			if category = strings.TrimSpace(category); category != "" {
				input.Categories = append(input.Categories, category)
			}
		}
	}

	result, err := h.productService.List(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	view, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}
