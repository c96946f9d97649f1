package repo

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/internal/agent"
	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/pkg/models"
)

// SalesRepository reads purchase history and proposals
type SalesRepository struct {
	db *gorm.DB
}

// NewSalesRepository creates a sales repository
func NewSalesRepository(db *gorm.DB) *SalesRepository {
	return &SalesRepository{db: db}
}

// PurchaseSummary aggregates the customer's approved proposals: order count,
// average ticket and last order date. Implements the profile classifier port.
func (r *SalesRepository) PurchaseSummary(customerID uuid.UUID) (*agent.PurchaseSummary, error) {
	var customer models.Customer
	if err := r.db.Where("id = ?", customerID).First(&customer).Error; err != nil {
		return nil, fmt.Errorf("customer lookup failed: %w", err)
	}

	summary := &agent.PurchaseSummary{CustomerName: customer.Name}

	var proposals []models.Proposal
	err := r.db.
		Where("customer_id = ? AND status = ?", customerID, "aprovada").
		Order("created_at DESC").
		Find(&proposals).Error
	if err != nil {
		return nil, fmt.Errorf("purchase history lookup failed: %w", err)
	}

	if len(proposals) == 0 {
		return summary, nil
	}

	total := 0.0
	for _, p := range proposals {
		if amount, err := strconv.ParseFloat(p.TotalAmount, 64); err == nil {
			total += amount
		}
	}

	summary.OrderCount = len(proposals)
	summary.AverageTicket = total / float64(len(proposals))
	last := proposals[0].CreatedAt
	summary.LastOrderAt = &last

	return summary, nil
}

// ListProposalsByCustomer returns the customer's proposals, newest first
func (r *SalesRepository) ListProposalsByCustomer(customerID uuid.UUID) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := r.db.
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&proposals).Error
	return proposals, err
}

// GetProposal returns a proposal with items
func (r *SalesRepository) GetProposal(id uuid.UUID) (*models.Proposal, error) {
	var proposal models.Proposal
	err := r.db.Preload("Items").Where("id = ?", id).First(&proposal).Error
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}
