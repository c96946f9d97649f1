package models

import (
	"time"

	"github.com/google/uuid"
)

// InteractionLog records every question or reply produced by the sales agent
type InteractionLog struct {
	BaseModel
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index;constraint:OnDelete:RESTRICT" json:"conversation_id"`
	Type           string    `gorm:"not null" json:"type"` // pergunta_qualificadora, resposta_gerada, fallback
	Content        string    `gorm:"type:text" json:"content"`
	AgentState     string    `json:"agent_state"`
	Metadata       string    `json:"metadata"`
}

// AgentMemory is a long-term memory record for a conversation. The row is the
// source of truth; the embedding vector lives in Qdrant under the same ID.
// Records expire 90 days after creation and are never updated in place.
type AgentMemory struct {
	BaseModel
	ConversationID  uuid.UUID `gorm:"type:uuid;not null;index;constraint:OnDelete:RESTRICT" json:"conversation_id"`
	InteractionType string    `gorm:"not null" json:"interaction_type"`
	Summary         string    `gorm:"type:text;not null" json:"summary"`
	RelevanceScore  float64   `gorm:"default:0.5" json:"relevance_score"`
	ExpiresAt       time.Time `gorm:"index;not null" json:"expires_at"`
}
