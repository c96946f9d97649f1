package agent

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/pkg/models"
)

// Interaction log types
const (
	InteractionQualifyingQuestion = "pergunta_qualificadora"
	InteractionGeneratedReply     = "resposta_gerada"
	InteractionRephraseFallback   = "fallback_reformulacao"
)

// QualifyingResult is the outcome of one qualifying pass
type QualifyingResult struct {
	// Skip is set when the conversation already carries enough information
	// to proceed to product search
	Skip bool
	// Gap is the category the question targets
	Gap GapTag
	// Question is the outbound question text (rephrased or base)
	Question string
	// UsedFallback is set when the rephrasing call failed and the base
	// question was used verbatim
	UsedFallback bool
}

// Qualifier runs the qualifying-question loop: detect gaps, pick the next
// base question, have the secondary model rephrase it naturally and persist
// the asked question as an interaction log entry and a memory record.
type Qualifier struct {
	db        *gorm.DB
	rephraser QuestionRephraser
	memory    *MemoryWriter
	rng       *rand.Rand
}

// NewQualifier creates a qualifier. rng is injected so tests can pin the
// phrasing choice.
func NewQualifier(db *gorm.DB, rephraser QuestionRephraser, memory *MemoryWriter, rng *rand.Rand) *Qualifier {
	return &Qualifier{db: db, rephraser: rephraser, memory: memory, rng: rng}
}

// Ask runs one qualifying pass for the conversation. When the rephrasing
// call fails the base question is returned verbatim; that degraded path is
// logged, never surfaced as an error.
func (q *Qualifier) Ask(ctx context.Context, conversationID uuid.UUID, state ConversationState, historyContext, currentMessage string) QualifyingResult {
	if HasSufficientInfo(historyContext, currentMessage) {
		log.Debug().
			Str("conversation_id", conversationID.String()).
			Msg("Sufficient qualifying info, skipping question")
		return QualifyingResult{Skip: true}
	}

	gaps := IdentifyGaps(historyContext, currentMessage)
	gap, baseQuestion := NextQuestion(gaps, q.rng)

	result := QualifyingResult{Gap: gap, Question: baseQuestion}

	rephrased, err := q.rephraser.Rephrase(ctx, baseQuestion, historyContext)
	if err != nil || rephrased == "" {
		log.Warn().Err(err).
			Str("conversation_id", conversationID.String()).
			Str("gap", string(gap)).
			Msg("Question rephrasing failed, falling back to base question")
		result.UsedFallback = true
		q.logInteraction(ctx, conversationID, InteractionRephraseFallback, baseQuestion, state, gap)
	} else {
		result.Question = rephrased
	}

	q.logInteraction(ctx, conversationID, InteractionQualifyingQuestion, result.Question, state, gap)

	if q.memory != nil {
		summary := fmt.Sprintf("Pergunta qualificadora (%s): %s", gap, result.Question)
		q.memory.Record(ctx, conversationID, InteractionQualifyingQuestion, summary, 0.6)
	}

	return result
}

func (q *Qualifier) logInteraction(ctx context.Context, conversationID uuid.UUID, interactionType, content string, state ConversationState, gap GapTag) {
	if q.db == nil {
		return
	}
	entry := models.InteractionLog{
		ConversationID: conversationID,
		Type:           interactionType,
		Content:        content,
		AgentState:     string(state),
		Metadata:       fmt.Sprintf(`{"lacuna":%q}`, gap),
	}
	if err := q.db.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Error().Err(err).
			Str("conversation_id", conversationID.String()).
			Str("type", interactionType).
			Msg("Failed to write interaction log")
	}
}
