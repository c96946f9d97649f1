package agent

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Profile types
const (
	ProfileLead    = "lead"
	ProfileNovo    = "cliente_novo"
	ProfileRegular = "cliente_regular"
	ProfileVIP     = "cliente_vip"
)

// CustomerProfile is the behavioral profile derived from purchase history.
// It is recomputed on every turn, never persisted.
type CustomerProfile struct {
	Type           string   `json:"tipo"`
	Tags           []string `json:"marcadores"`
	PurchaseCount  int      `json:"historico_compras"`
	AverageTicket  float64  `json:"ticket_medio"`
	DaysSinceOrder int      `json:"ultima_compra_dias"`
	Name           string   `json:"nome,omitempty"`
}

// PurchaseSummary is the aggregate the classifier reads from the sales store
type PurchaseSummary struct {
	CustomerName  string
	OrderCount    int
	AverageTicket float64
	LastOrderAt   *time.Time
}

// PurchaseHistoryRepository is the read port into the sales store
type PurchaseHistoryRepository interface {
	PurchaseSummary(customerID uuid.UUID) (*PurchaseSummary, error)
}

// ProfileClassifier derives customer profiles from purchase history
type ProfileClassifier struct {
	history PurchaseHistoryRepository
}

// NewProfileClassifier creates a profile classifier
func NewProfileClassifier(history PurchaseHistoryRepository) *ProfileClassifier {
	return &ProfileClassifier{history: history}
}

// daysNever marks a customer that never placed an order
const daysNever = 9999

// Classify derives a fresh profile for the customer. A nil ID yields a lead
// profile without touching the store. A lookup error yields a degraded lead
// profile tagged erro_perfil; classification never blocks the conversation.
func (c *ProfileClassifier) Classify(customerID *uuid.UUID) CustomerProfile {
	if customerID == nil {
		return CustomerProfile{
			Type:           ProfileLead,
			Tags:           []string{"sem_cadastro"},
			DaysSinceOrder: daysNever,
		}
	}

	summary, err := c.history.PurchaseSummary(*customerID)
	if err != nil {
		log.Warn().Err(err).
			Str("customer_id", customerID.String()).
			Msg("Profile lookup failed, using degraded lead profile")
		return CustomerProfile{
			Type:           ProfileLead,
			Tags:           []string{"erro_perfil"},
			DaysSinceOrder: daysNever,
		}
	}

	profile := CustomerProfile{
		Name:           summary.CustomerName,
		PurchaseCount:  summary.OrderCount,
		AverageTicket:  summary.AverageTicket,
		DaysSinceOrder: daysNever,
	}
	if summary.LastOrderAt != nil {
		profile.DaysSinceOrder = int(time.Since(*summary.LastOrderAt).Hours() / 24)
	}

	switch {
	case summary.OrderCount == 0:
		profile.Type = ProfileNovo
	case summary.OrderCount > 10 && summary.AverageTicket > 5000:
		profile.Type = ProfileVIP
		profile.Tags = append(profile.Tags, "vip")
	default:
		profile.Type = ProfileRegular
	}

	// Tags are additive, not exclusive.
	if summary.AverageTicket > 5000 {
		profile.Tags = append(profile.Tags, "ticket_alto")
	}
	if summary.OrderCount > 5 {
		profile.Tags = append(profile.Tags, "frequente")
	}
	if profile.DaysSinceOrder <= 30 {
		profile.Tags = append(profile.Tags, "ativo_recente")
	} else if profile.DaysSinceOrder >= 180 && profile.DaysSinceOrder < daysNever {
		profile.Tags = append(profile.Tags, "inativo")
	}

	return profile
}
