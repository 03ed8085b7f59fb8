package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// CartHandler handles cart snapshot HTTP requests
type CartHandler struct {
	BaseHandler
	cartService *checkout.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *checkout.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// RegisterRoutes registers the cart endpoints
func (h *CartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/carts")
	{
		group.POST("", h.Create)
		group.GET("/:id", h.Get)
	}
}

// CreateCartRequest represents the request body for cart creation
type CreateCartRequest struct {
	Items []CartItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CartItemRequest is a single cart line in the request body
type CartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// Create handles POST /carts
func (h *CartHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	items := make([]checkout.CartItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = checkout.CartItemInput{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	view, err := h.cartService.CreateCart(c.Request.Context(), checkout.CreateCartInput{
		UserID: userID,
		Items:  items,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, view)
}

// Get handles GET /carts/:id
func (h *CartHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	cartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid cart ID")
		return
	}

	view, err := h.cartService.GetCart(c.Request.Context(), userID, cartID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}
