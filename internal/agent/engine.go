package agent

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/pkg/models"
)

// CartReader exposes the candidate products attached to a conversation
type CartReader interface {
	CandidateProducts(ctx context.Context, conversationID uuid.UUID) ([]CandidateProduct, error)
}

// TurnResult is the outcome of processing one inbound message
type TurnResult struct {
	// Reply is the outbound text to deliver
	Reply string
	// QualifyingQuestion is set when the reply is a qualifying question
	// rather than a full generated sales reply
	QualifyingQuestion bool
	// State is the conversation state after the turn
	State ConversationState
}

// Engine processes one conversational turn per inbound message. Invocations
// are stateless: profile and gaps are re-derived on every call and the
// conversation state is read from and written back to the store each turn.
type Engine struct {
	db         *gorm.DB
	classifier *ProfileClassifier
	qualifier  *Qualifier
	responder  *Responder
	memory     *MemoryWriter
	recall     MemoryRecall
	search     CandidateSearcher
	carts      CartReader
	proposals  ProposalAssembler
}

// NewEngine creates a conversation engine. recall may be nil when no vector
// store is configured; search and proposals may be nil in tests.
func NewEngine(db *gorm.DB, classifier *ProfileClassifier, qualifier *Qualifier, responder *Responder, memory *MemoryWriter, recall MemoryRecall, search CandidateSearcher, carts CartReader, proposals ProposalAssembler) *Engine {
	return &Engine{
		db:         db,
		classifier: classifier,
		qualifier:  qualifier,
		responder:  responder,
		memory:     memory,
		recall:     recall,
		search:     search,
		carts:      carts,
		proposals:  proposals,
	}
}

// ProcessTurn handles one inbound message: run the lacuna analysis and ask a
// qualifying question while information is still missing; otherwise classify
// the profile, advance the state machine and generate the sales reply.
func (e *Engine) ProcessTurn(ctx context.Context, conversation *models.Conversation, text, historyContext string) TurnResult {
	state := ConversationState(conversation.AgentState)
	if !ValidState(state) {
		log.Warn().
			Str("conversation_id", conversation.ID.String()).
			Str("agent_state", conversation.AgentState).
			Msg("Unknown agent state, resetting to saudacao_inicial")
		state = StateSaudacaoInicial
	}

	// Qualifying loop: while information is missing, ask instead of selling.
	qr := e.qualifier.Ask(ctx, conversation.ID, state, historyContext, text)
	if !qr.Skip {
		return TurnResult{Reply: qr.Question, QualifyingQuestion: true, State: state}
	}

	intent := ClassifyIntent(text)

	// A product search refreshes the candidate cart; any other intent works
	// with the candidates already attached.
	var products []CandidateProduct
	var err error
	if intent.Name == IntentBuscarProduto && e.search != nil {
		products, err = e.search.RefreshCandidates(ctx, conversation.ID, text)
	} else {
		products, err = e.carts.CandidateProducts(ctx, conversation.ID)
	}
	if err != nil {
		log.Error().Err(err).
			Str("conversation_id", conversation.ID.String()).
			Msg("Failed to load cart candidates")
		products = nil
	}

	next, changed := NextState(TurnContext{
		State:      state,
		Intent:     intent,
		CartSize:   len(products),
		ProposalID: conversation.ProposalID,
	})
	if changed {
		e.writeState(ctx, conversation, state, next)
	}

	// Entering montagem_proposta assembles the proposal from the candidate
	// cart; the proposal ID gates the next transition on the following turn.
	if changed && next == StateMontagemProposta && e.proposals != nil && conversation.ProposalID == nil {
		proposalID, err := e.proposals.AssembleFromConversation(ctx, conversation.ID)
		if err != nil {
			log.Error().Err(err).
				Str("conversation_id", conversation.ID.String()).
				Msg("Proposal assembly failed")
		} else {
			conversation.ProposalID = proposalID
		}
	}

	profile := e.classifier.Classify(customerIDOf(conversation))

	historyContext = e.withRecalledMemories(ctx, conversation.ID, text, historyContext)

	reply := e.responder.GenerateReply(ctx, text, historyContext, profile, products, next)

	e.logReply(ctx, conversation.ID, reply, next)
	if e.memory != nil && reply != FallbackReply {
		summary := fmt.Sprintf("Cliente: %s | Agente: %s", truncate(text, 300), truncate(reply, 300))
		e.memory.Record(ctx, conversation.ID, InteractionGeneratedReply, summary, 0.5)
	}

	return TurnResult{Reply: reply, State: next}
}

// writeState persists the transition with an optimistic guard on the state
// read at the start of the turn. A concurrent turn that already advanced the
// conversation wins; this write is dropped with a warning.
func (e *Engine) writeState(ctx context.Context, conversation *models.Conversation, from, to ConversationState) {
	res := e.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ? AND agent_state = ?", conversation.ID, string(from)).
		Update("agent_state", string(to))
	if res.Error != nil {
		log.Error().Err(res.Error).
			Str("conversation_id", conversation.ID.String()).
			Msg("Failed to persist agent state")
		return
	}
	if res.RowsAffected == 0 {
		log.Warn().
			Str("conversation_id", conversation.ID.String()).
			Str("from", string(from)).
			Str("to", string(to)).
			Msg("Concurrent turn already advanced state, dropping transition")
		return
	}
	conversation.AgentState = string(to)
}

func (e *Engine) logReply(ctx context.Context, conversationID uuid.UUID, reply string, state ConversationState) {
	entry := models.InteractionLog{
		ConversationID: conversationID,
		Type:           InteractionGeneratedReply,
		Content:        reply,
		AgentState:     string(state),
	}
	if err := e.db.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Error().Err(err).
			Str("conversation_id", conversationID.String()).
			Msg("Failed to write interaction log")
	}
}

// recallLimit caps how many stored memories feed a single prompt
const recallLimit = 3

// withRecalledMemories appends the stored memories most similar to the
// inbound message to the prompt context
func (e *Engine) withRecalledMemories(ctx context.Context, conversationID uuid.UUID, text, historyContext string) string {
	if e.recall == nil {
		return historyContext
	}
	hits := e.recall.Recall(ctx, conversationID, text, recallLimit)
	if len(hits) == 0 {
		return historyContext
	}

	var b strings.Builder
	b.WriteString(historyContext)
	b.WriteString("\nMemórias de conversas anteriores:\n")
	for _, hit := range hits {
		b.WriteString("- ")
		b.WriteString(hit.Summary)
		b.WriteString("\n")
	}
	return b.String()
}

func customerIDOf(conversation *models.Conversation) *uuid.UUID {
	if conversation.CustomerID == uuid.Nil {
		return nil
	}
	id := conversation.CustomerID
	return &id
}

// truncate cuts s to at most n bytes, backing up to a rune boundary so
// accented text is never split mid-sequence
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
