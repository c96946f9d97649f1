package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/internal/agent"
	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/pkg/models"
)

// CartService manages the candidate-product cart attached to a conversation
type CartService struct {
	db *gorm.DB
}

// NewCartService creates a cart service
func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// GetOrCreateActiveCart returns the conversation's active cart, creating one
// when none exists
func (s *CartService) GetOrCreateActiveCart(customerID, conversationID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.Where("conversation_id = ? AND status = 'active'", conversationID).First(&cart).Error
	if err == gorm.ErrRecordNotFound {
		cart = models.Cart{
			CustomerID:     customerID,
			ConversationID: &conversationID,
			Status:         "active",
		}
		err = s.db.Create(&cart).Error
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddItem adds a product to the cart, merging quantity when already present
func (s *CartService) AddItem(cartID, productID uuid.UUID, quantity int) error {
	var product models.Product
	if err := s.db.Where("id = ?", productID).First(&product).Error; err != nil {
		return fmt.Errorf("product lookup failed: %w", err)
	}

	var existing models.CartItem
	err := s.db.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		item := models.CartItem{
			CartID:      cartID,
			ProductID:   &productID,
			Quantity:    quantity,
			Price:       product.Price,
			ProductName: &product.Name,
			ProductSKU:  &product.SKU,
		}
		if err := s.db.Create(&item).Error; err != nil {
			return err
		}
	} else if err == nil {
		if err := s.db.Model(&existing).Update("quantity", existing.Quantity+quantity).Error; err != nil {
			return err
		}
	} else {
		return err
	}

	return s.refreshTotals(cartID)
}

// ReplaceItems clears the cart and stores a fresh candidate list, used when
// a new product search supersedes the previous suggestions
func (s *CartService) ReplaceItems(cartID uuid.UUID, products []models.Product) error {
	if err := s.db.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	for _, product := range products {
		productID := product.ID
		name := product.Name
		sku := product.SKU
		item := models.CartItem{
			CartID:      cartID,
			ProductID:   &productID,
			Quantity:    1,
			Price:       product.Price,
			ProductName: &name,
			ProductSKU:  &sku,
		}
		if err := s.db.Create(&item).Error; err != nil {
			return err
		}
	}
	return s.refreshTotals(cartID)
}

// CandidateProducts returns the cart entries of the conversation's active
// cart summarized for the agent prompt. Implements agent.CartReader.
func (s *CartService) CandidateProducts(ctx context.Context, conversationID uuid.UUID) ([]agent.CandidateProduct, error) {
	var cart models.Cart
	err := s.db.WithContext(ctx).
		Preload("Items.Product").
		Where("conversation_id = ? AND status = 'active'", conversationID).
		First(&cart).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	candidates := make([]agent.CandidateProduct, 0, len(cart.Items))
	for _, item := range cart.Items {
		candidate := agent.CandidateProduct{Price: item.Price}
		if item.ProductName != nil {
			candidate.Name = *item.ProductName
		}
		if item.Product != nil {
			candidate.Stock = item.Product.StockQuantity
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

// refreshTotals recomputes the cart's denormalized totals
func (s *CartService) refreshTotals(cartID uuid.UUID) error {
	var items []models.CartItem
	if err := s.db.Where("cart_id = ?", cartID).Find(&items).Error; err != nil {
		return err
	}

	total := 0.0
	for _, item := range items {
		if price, err := strconv.ParseFloat(item.Price, 64); err == nil {
			total += price * float64(item.Quantity)
		}
	}

	return s.db.Model(&models.Cart{}).Where("id = ?", cartID).Updates(map[string]interface{}{
		"total_amount": fmt.Sprintf("%.2f", total),
		"items_count":  len(items),
	}).Error
}
