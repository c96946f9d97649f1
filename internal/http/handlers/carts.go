package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/internal/services"
	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/pkg/models"
)

// CartHandler lets sellers inspect and edit the candidate products the
// agent attached to a conversation
type CartHandler struct {
	db    *gorm.DB
	carts *services.CartService
}

// NewCartHandler creates a cart handler
func NewCartHandler(db *gorm.DB, carts *services.CartService) *CartHandler {
	return &CartHandler{db: db, carts: carts}
}

// GetByConversation returns the conversation's active cart with items
func (h *CartHandler) GetByConversation(c echo.Context) error {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid conversation ID"})
	}

	var cart models.Cart
	err = h.db.Preload("Items.Product").
		Where("conversation_id = ? AND status = ?", conversationID, "active").
		First(&cart).Error
	if err == gorm.ErrRecordNotFound {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "No active cart for conversation"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load cart"})
	}

	return c.JSON(http.StatusOK, cart)
}

// AddItem puts a product in the conversation's active cart
func (h *CartHandler) AddItem(c echo.Context) error {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid conversation ID"})
	}

	var req struct {
		ProductID uuid.UUID `json:"product_id" validate:"required"`
		Quantity  int       `json:"quantity" validate:"min=1"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	var conversation models.Conversation
	if err := h.db.Where("id = ?", conversationID).First(&conversation).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Conversation not found"})
	}

	cart, err := h.carts.GetOrCreateActiveCart(conversation.CustomerID, conversationID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to open cart"})
	}

	if err := h.carts.AddItem(cart.ID, req.ProductID, req.Quantity); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	h.db.Preload("Items.Product").Where("id = ?", cart.ID).First(cart)
	return c.JSON(http.StatusOK, cart)
}
