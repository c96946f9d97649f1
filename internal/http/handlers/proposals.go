package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/internal/repo"
	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/internal/services"
	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/pkg/models"
)

// ProposalHandler serves commercial proposals
type ProposalHandler struct {
	db        *gorm.DB
	sales     *repo.SalesRepository
	proposals *services.ProposalService
}

// NewProposalHandler creates a proposal handler
func NewProposalHandler(db *gorm.DB, sales *repo.SalesRepository, proposals *services.ProposalService) *ProposalHandler {
	return &ProposalHandler{db: db, sales: sales, proposals: proposals}
}

// List returns proposals, newest first, optionally filtered by status or customer
func (h *ProposalHandler) List(c echo.Context) error {
	if customerParam := c.QueryParam("customer_id"); customerParam != "" {
		customerID, err := uuid.Parse(customerParam)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid customer ID"})
		}
		proposals, err := h.sales.ListProposalsByCustomer(customerID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list proposals"})
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"data": proposals})
	}

	limit, offset := pagination(c)

	query := h.db.Preload("Items").Order("created_at DESC")
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Model(&models.Proposal{}).Count(&total)

	var proposals []models.Proposal
	if err := query.Limit(limit).Offset(offset).Find(&proposals).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list proposals"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  proposals,
		"total": total,
	})
}

// GetByID returns one proposal with its items
func (h *ProposalHandler) GetByID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid proposal ID"})
	}

	proposal, err := h.sales.GetProposal(id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Proposal not found"})
	}

	return c.JSON(http.StatusOK, proposal)
}

// CreateFromCart assembles a proposal from a cart, for sellers closing
// a negotiation manually
func (h *ProposalHandler) CreateFromCart(c echo.Context) error {
	var req struct {
		CartID uuid.UUID `json:"cart_id" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	proposal, err := h.proposals.CreateFromCart(req.CartID)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, proposal)
}

// UpdateStatus moves a proposal through its lifecycle
func (h *ProposalHandler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid proposal ID"})
	}

	var req struct {
		Status string `json:"status" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.proposals.UpdateStatus(id, req.Status); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": req.Status})
}
