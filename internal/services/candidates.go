package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/internal/agent"
	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/pkg/models"
)

// candidateLimit caps how many search results become cart candidates
const candidateLimit = 5

// CandidateService turns a buyer's product search into the candidate list
// attached to the conversation's cart. Implements agent.CandidateSearcher.
type CandidateService struct {
	db       *gorm.DB
	products *ProductService
	carts    *CartService
}

// NewCandidateService creates a candidate service
func NewCandidateService(db *gorm.DB, products *ProductService, carts *CartService) *CandidateService {
	return &CandidateService{db: db, products: products, carts: carts}
}

// RefreshCandidates searches the catalog for the message's product terms and
// replaces the conversation's candidate list with the results. An empty
// search keeps the existing candidates so a vague follow-up does not wipe
// earlier suggestions.
func (s *CandidateService) RefreshCandidates(ctx context.Context, conversationID uuid.UUID, query string) ([]agent.CandidateProduct, error) {
	searchQuery := agent.ExtractProductTerms(query)
	if searchQuery == "" {
		searchQuery = strings.TrimSpace(query)
	}

	results, err := s.products.SearchProducts(searchQuery, candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("candidate search failed: %w", err)
	}
	if len(results) == 0 {
		log.Debug().
			Str("conversation_id", conversationID.String()).
			Str("query", searchQuery).
			Msg("Product search found nothing, keeping current candidates")
		return s.carts.CandidateProducts(ctx, conversationID)
	}

	var conversation models.Conversation
	if err := s.db.WithContext(ctx).Where("id = ?", conversationID).First(&conversation).Error; err != nil {
		return nil, fmt.Errorf("conversation lookup failed: %w", err)
	}

	cart, err := s.carts.GetOrCreateActiveCart(conversation.CustomerID, conversationID)
	if err != nil {
		return nil, fmt.Errorf("cart open failed: %w", err)
	}
	if err := s.carts.ReplaceItems(cart.ID, results); err != nil {
		return nil, fmt.Errorf("candidate replace failed: %w", err)
	}

	return s.carts.CandidateProducts(ctx, conversationID)
}
