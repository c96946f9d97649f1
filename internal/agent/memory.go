package agent

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/pkg/models"
)

// memoryTTL is how long a memory record stays retrievable
const memoryTTL = 90 * 24 * time.Hour

// VectorStore persists embedding vectors for later similarity retrieval
type VectorStore interface {
	StoreMemoryVector(ctx context.Context, conversationID, memoryID string, vector []float32, payload map[string]interface{}) error
}

// MemoryWriter persists long-term memory records: a relational row plus an
// embedding vector under the same ID
type MemoryWriter struct {
	db       *gorm.DB
	embedder EmbeddingGenerator
	vectors  VectorStore
}

// NewMemoryWriter creates a memory writer
func NewMemoryWriter(db *gorm.DB, embedder EmbeddingGenerator, vectors VectorStore) *MemoryWriter {
	return &MemoryWriter{db: db, embedder: embedder, vectors: vectors}
}

// Record stores a summarized interaction as a 90-day memory. An empty
// embedding skips the insert with a warning; insert errors are logged and
// swallowed. Memory persistence never fails a conversational turn.
func (m *MemoryWriter) Record(ctx context.Context, conversationID uuid.UUID, interactionType, summary string, relevance float64) {
	embedding, err := m.embedder.GenerateEmbedding(ctx, summary)
	if err != nil || len(embedding) == 0 {
		log.Warn().Err(err).
			Str("conversation_id", conversationID.String()).
			Str("interaction_type", interactionType).
			Msg("Empty embedding, skipping memory record")
		return
	}

	record := models.AgentMemory{
		ConversationID:  conversationID,
		InteractionType: interactionType,
		Summary:         summary,
		RelevanceScore:  relevance,
		ExpiresAt:       time.Now().Add(memoryTTL),
	}

	if err := m.db.WithContext(ctx).Create(&record).Error; err != nil {
		log.Error().Err(err).
			Str("conversation_id", conversationID.String()).
			Msg("Failed to insert memory record")
		return
	}

	if m.vectors == nil {
		return
	}
	// expires_at goes in as a unix timestamp so retrieval can range-filter
	// expired points.
	err = m.vectors.StoreMemoryVector(ctx, conversationID.String(), record.ID.String(), embedding, map[string]interface{}{
		"interaction_type": interactionType,
		"summary":          summary,
		"relevance_score":  relevance,
		"expires_at":       record.ExpiresAt.Unix(),
	})
	if err != nil {
		log.Error().Err(err).
			Str("memory_id", record.ID.String()).
			Msg("Failed to store memory vector")
	}
}
