package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/internal/agent"
	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/pkg/models"
)

// CustomerHandler serves customer records and profile classification
type CustomerHandler struct {
	db         *gorm.DB
	classifier *agent.ProfileClassifier
}

// NewCustomerHandler creates a customer handler
func NewCustomerHandler(db *gorm.DB, classifier *agent.ProfileClassifier) *CustomerHandler {
	return &CustomerHandler{db: db, classifier: classifier}
}

// List returns customers, optionally filtered by a name/phone search
func (h *CustomerHandler) List(c echo.Context) error {
	limit, offset := pagination(c)

	query := h.db.Order("name ASC")
	if search := c.QueryParam("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name ILIKE ? OR phone LIKE ?", pattern, pattern)
	}

	var total int64
	query.Model(&models.Customer{}).Count(&total)

	var customers []models.Customer
	if err := query.Limit(limit).Offset(offset).Find(&customers).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list customers"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  customers,
		"total": total,
	})
}

// GetByID returns one customer
func (h *CustomerHandler) GetByID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid customer ID"})
	}

	var customer models.Customer
	if err := h.db.Where("id = ?", id).First(&customer).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Customer not found"})
	}

	return c.JSON(http.StatusOK, customer)
}

// GetProfile classifies the customer the same way the agent does, so the
// dashboard shows what the agent sees
func (h *CustomerHandler) GetProfile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid customer ID"})
	}

	profile := h.classifier.Classify(&id)
	return c.JSON(http.StatusOK, profile)
}

// Update edits a customer's registration data
func (h *CustomerHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid customer ID"})
	}

	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Segment string `json:"segment"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Segment != "" {
		updates["segment"] = req.Segment
	}
	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Nothing to update"})
	}

	result := h.db.Model(&models.Customer{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update customer"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Customer not found"})
	}

	var customer models.Customer
	h.db.Where("id = ?", id).First(&customer)
	return c.JSON(http.StatusOK, customer)
}
