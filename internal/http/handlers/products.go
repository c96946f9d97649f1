package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/internal/services"
	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/pkg/models"
)

// ProductHandler serves the surgical supplies catalog
type ProductHandler struct {
	db       *gorm.DB
	products *services.ProductService
}

// NewProductHandler creates a product handler
func NewProductHandler(db *gorm.DB, products *services.ProductService) *ProductHandler {
	return &ProductHandler{db: db, products: products}
}

// List searches the catalog. The "q" parameter goes through the same
// Portuguese full-text search the agent uses.
func (h *ProductHandler) List(c echo.Context) error {
	limit, _ := pagination(c)

	results, err := h.products.SearchProducts(c.QueryParam("q"), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Product search failed"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"data": results})
}

// GetByID returns a single product
func (h *ProductHandler) GetByID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}

	product, err := h.products.GetProductByID(id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Product not found"})
	}

	return c.JSON(http.StatusOK, product)
}

// Create registers a catalog item
func (h *ProductHandler) Create(c echo.Context) error {
	var product models.Product
	if err := c.Bind(&product); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&product); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.db.Create(&product).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create product"})
	}

	return c.JSON(http.StatusCreated, product)
}

// Update edits a catalog item
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}

	var product models.Product
	if err := h.db.Where("id = ?", id).First(&product).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Product not found"})
	}

	var updates models.Product
	if err := c.Bind(&updates); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	updates.ID = id

	if err := h.db.Model(&product).Updates(&updates).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update product"})
	}

	return c.JSON(http.StatusOK, product)
}

// Delete soft-deletes a catalog item
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}

	result := h.db.Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete product"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Product not found"})
	}

	return c.NoContent(http.StatusNoContent)
}
