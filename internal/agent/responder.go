package agent

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

// CandidateProduct is a cart entry summarized for the prompt
type CandidateProduct struct {
	Name  string
	Price string
	Stock int
}

// FallbackReply is returned whenever the primary completion call fails.
// It carries no business content on purpose; the conversation must not
// crash on a generator failure.
const FallbackReply = "Desculpe, tive um problema para processar sua mensagem agora. Pode repetir, por favor? Se preferir, um de nossos vendedores pode te atender em instantes."

const maxReplyTokens = 300

// maxContextChars bounds the historical context embedded in the prompt
const maxContextChars = 1500

// Responder builds the profile- and state-conditioned prompt and produces
// the outbound sales reply
type Responder struct {
	generator ReplyGenerator
}

// NewResponder creates a responder backed by the primary completion port
func NewResponder(generator ReplyGenerator) *Responder {
	return &Responder{generator: generator}
}

// GenerateReply produces the next outbound message. Any failure from the
// completion endpoint is replaced by FallbackReply and logged; the error is
// never propagated.
func (r *Responder) GenerateReply(ctx context.Context, message, history string, profile CustomerProfile, products []CandidateProduct, state ConversationState) string {
	prompt := BuildSystemPrompt(profile, state, history, products)

	reply, err := r.generator.Complete(ctx, prompt, message, maxReplyTokens)
	if err != nil {
		log.Error().Err(err).
			Str("state", string(state)).
			Str("profile", profile.Type).
			Msg("Reply generation failed, using fallback reply")
		return FallbackReply
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		log.Warn().Str("state", string(state)).Msg("Empty completion, using fallback reply")
		return FallbackReply
	}
	return reply
}

// BuildSystemPrompt assembles the single structured system prompt for the
// sales model: profile summary, conversation stage, truncated history, up to
// five candidate products and stage-specific selling instructions.
func BuildSystemPrompt(profile CustomerProfile, state ConversationState, history string, products []CandidateProduct) string {
	var b strings.Builder

	b.WriteString("Você é um vendedor consultivo da Fernandes Materiais Cirúrgicos, ")
	b.WriteString("distribuidora de materiais médico-hospitalares. Atenda pelo WhatsApp ")
	b.WriteString("de forma cordial, objetiva e profissional, sempre em português.\n\n")

	b.WriteString("## Perfil do cliente\n")
	b.WriteString(fmt.Sprintf("- Tipo: %s\n", profile.Type))
	if profile.Name != "" {
		b.WriteString(fmt.Sprintf("- Nome: %s\n", profile.Name))
	}
	b.WriteString(fmt.Sprintf("- Compras anteriores: %d\n", profile.PurchaseCount))
	if profile.PurchaseCount > 0 {
		b.WriteString(fmt.Sprintf("- Ticket médio: R$ %.2f\n", profile.AverageTicket))
	}
	if len(profile.Tags) > 0 {
		b.WriteString(fmt.Sprintf("- Marcadores: %s\n", strings.Join(profile.Tags, ", ")))
	}

	b.WriteString(fmt.Sprintf("\n## Etapa da conversa\n%s\n", state))

	if history != "" {
		h := historyTail(history, maxContextChars)
		b.WriteString("\n## Contexto recente\n")
		b.WriteString(h)
		b.WriteString("\n")
	}

	if len(products) > 0 {
		b.WriteString("\n## Produtos candidatos\n")
		limit := len(products)
		if limit > 5 {
			limit = 5
		}
		for _, p := range products[:limit] {
			b.WriteString(fmt.Sprintf("- %s | R$ %s | estoque: %d\n", p.Name, p.Price, p.Stock))
		}
	}

	b.WriteString("\n## Instruções\n")
	writeProfileGuidance(&b, profile)
	writeStageGuidance(&b, state)
	b.WriteString("- Nunca invente preço ou estoque; use apenas os produtos listados.\n")
	b.WriteString("- Responda em no máximo dois parágrafos curtos.\n")

	return b.String()
}

// historyTail keeps the most recent max bytes of history, advancing to a
// rune boundary so accented text is never split mid-sequence
func historyTail(history string, max int) string {
	if len(history) <= max {
		return history
	}
	start := len(history) - max
	for start < len(history) && !utf8.RuneStart(history[start]) {
		start++
	}
	return history[start:]
}

func writeProfileGuidance(b *strings.Builder, profile CustomerProfile) {
	switch profile.Type {
	case ProfileVIP:
		b.WriteString("- Cliente VIP: trate com prioridade, mencione condições especiais e prazos diferenciados.\n")
	case ProfileNovo, ProfileLead:
		b.WriteString("- Cliente novo: apresente brevemente a empresa e transmita confiança; não pressione.\n")
	}
	for _, tag := range profile.Tags {
		if tag == "inativo" {
			b.WriteString("- Cliente reativado: demonstre que sentimos falta dele e destaque novidades do catálogo.\n")
			break
		}
	}
}

func writeStageGuidance(b *strings.Builder, state ConversationState) {
	switch state {
	case StateSugestaoProdutos:
		b.WriteString("- Apresente os produtos candidatos com preço e disponibilidade, perguntando qual interessa.\n")
	case StatePropostaApresentada:
		b.WriteString("- A proposta já foi enviada: reforce os benefícios e pergunte se pode fechar o pedido.\n")
	case StateNegociacaoAtiva:
		b.WriteString("- Negociação em andamento: defenda o valor do produto antes de falar em desconto e envolva o gestor para descontos acima de 5%.\n")
	}
}
