package agent

import (
	"context"

	"github.com/google/uuid"
)

// ReplyGenerator is the primary chat-completion port used to produce full
// sales replies. Its failure mode is a fixed apology string.
type ReplyGenerator interface {
	Complete(ctx context.Context, systemPrompt, userMessage string, maxTokens int) (string, error)
}

// QuestionRephraser is the secondary chat-completion port used only to
// rephrase qualifying questions. It has independent fallback semantics from
// ReplyGenerator (verbatim base question on failure), so the two stay
// separate interfaces even though the same client library backs both.
type QuestionRephraser interface {
	Rephrase(ctx context.Context, baseQuestion, conversationContext string) (string, error)
}

// EmbeddingGenerator produces a text embedding for a single string
type EmbeddingGenerator interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Transcriber converts a voice note at a media URL into plain text
type Transcriber interface {
	Transcribe(ctx context.Context, mediaURL, mimeType string) (string, error)
}

// CandidateSearcher refreshes the conversation's candidate products from a
// free-text product search
type CandidateSearcher interface {
	RefreshCandidates(ctx context.Context, conversationID uuid.UUID, query string) ([]CandidateProduct, error)
}

// ProposalAssembler turns the conversation's candidate cart into a numbered
// commercial proposal and returns its ID
type ProposalAssembler interface {
	AssembleFromConversation(ctx context.Context, conversationID uuid.UUID) (*uuid.UUID, error)
}

// RecalledMemory is a long-term memory retrieved for the current turn
type RecalledMemory struct {
	Summary string
	Score   float32
}

// MemoryRecall retrieves the stored memories most similar to the inbound
// message. Implementations degrade to an empty slice on failure.
type MemoryRecall interface {
	Recall(ctx context.Context, conversationID uuid.UUID, query string, limit int) []RecalledMemory
}
