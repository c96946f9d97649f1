package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/pkg/models"
)

// proposalValidity is how long a proposal stays valid after assembly
const proposalValidity = 15 * 24 * time.Hour

// ProposalService assembles commercial proposals from carts
type ProposalService struct {
	db *gorm.DB
}

// NewProposalService creates a proposal service
func NewProposalService(db *gorm.DB) *ProposalService {
	return &ProposalService{db: db}
}

// CreateFromCart turns the cart into a numbered proposal, snapshots the
// line items, marks the cart proposed and links the proposal to the
// conversation (which gates montagem_proposta → proposta_apresentada).
func (s *ProposalService) CreateFromCart(cartID uuid.UUID) (*models.Proposal, error) {
	var cart models.Cart
	err := s.db.Preload("Items").Preload("Customer").Where("id = ?", cartID).First(&cart).Error
	if err != nil {
		return nil, fmt.Errorf("cart lookup failed: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, fmt.Errorf("cannot create proposal from empty cart")
	}

	validUntil := time.Now().Add(proposalValidity)
	proposal := models.Proposal{
		CustomerID:     cart.CustomerID,
		ConversationID: cart.ConversationID,
		Number:         s.nextNumber(),
		Status:         "enviada",
		Currency:       "BRL",
		ValidUntil:     &validUntil,
	}
	if cart.Customer != nil {
		proposal.CustomerName = &cart.Customer.Name
		proposal.CustomerPhone = &cart.Customer.Phone
	}

	total := 0.0
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&proposal).Error; err != nil {
			return err
		}

		for _, item := range cart.Items {
			price, _ := strconv.ParseFloat(item.Price, 64)
			lineTotal := price * float64(item.Quantity)
			total += lineTotal

			line := models.ProposalItem{
				ProposalID:  proposal.ID,
				ProductID:   item.ProductID,
				Quantity:    item.Quantity,
				Price:       item.Price,
				Total:       fmt.Sprintf("%.2f", lineTotal),
				ProductName: item.ProductName,
				ProductSKU:  item.ProductSKU,
			}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&proposal).Update("total_amount", fmt.Sprintf("%.2f", total)).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Cart{}).Where("id = ?", cartID).Update("status", "proposed").Error; err != nil {
			return err
		}

		if cart.ConversationID != nil {
			if err := tx.Model(&models.Conversation{}).
				Where("id = ?", *cart.ConversationID).
				Update("proposal_id", proposal.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("proposal assembly failed: %w", err)
	}

	proposal.TotalAmount = fmt.Sprintf("%.2f", total)
	log.Info().
		Str("proposal_id", proposal.ID.String()).
		Str("number", proposal.Number).
		Str("total", proposal.TotalAmount).
		Msg("Proposal created from cart")

	return &proposal, nil
}

// AssembleFromConversation builds a proposal from the conversation's active
// cart, for the agent reaching montagem_proposta. Returns the proposal ID.
func (s *ProposalService) AssembleFromConversation(ctx context.Context, conversationID uuid.UUID) (*uuid.UUID, error) {
	var cart models.Cart
	err := s.db.WithContext(ctx).
		Where("conversation_id = ? AND status = 'active'", conversationID).
		First(&cart).Error
	if err != nil {
		return nil, fmt.Errorf("active cart lookup failed: %w", err)
	}

	proposal, err := s.CreateFromCart(cart.ID)
	if err != nil {
		return nil, err
	}
	id := proposal.ID
	return &id, nil
}

// UpdateStatus moves a proposal through its lifecycle
func (s *ProposalService) UpdateStatus(proposalID uuid.UUID, status string) error {
	switch status {
	case "rascunho", "enviada", "aprovada", "recusada", "expirada":
	default:
		return fmt.Errorf("invalid proposal status: %s", status)
	}
	return s.db.Model(&models.Proposal{}).Where("id = ?", proposalID).Update("status", status).Error
}

// nextNumber generates a sequential human-readable proposal number
func (s *ProposalService) nextNumber() string {
	var count int64
	s.db.Model(&models.Proposal{}).Count(&count)
	return fmt.Sprintf("PROP-%s-%05d", time.Now().Format("2006"), count+1)
}
