package agent

import "github.com/google/uuid"

// ConversationState is the sales-dialogue stage of a conversation
type ConversationState string

const (
	StateSaudacaoInicial       ConversationState = "saudacao_inicial"
	StateDescobertaNecessidade ConversationState = "descoberta_necessidade"
	StateSugestaoProdutos      ConversationState = "sugestao_produtos"
	StateAguardandoEscolha     ConversationState = "aguardando_escolha"
	StateRefinamentoBusca      ConversationState = "refinamento_busca"
	StateConfirmacaoQuantidade ConversationState = "confirmacao_quantidade"
	StateMontagemProposta      ConversationState = "montagem_proposta"
	StatePropostaApresentada   ConversationState = "proposta_apresentada"
	StateNegociacaoAtiva       ConversationState = "negociacao_ativa"
	StateFechamento            ConversationState = "fechamento"
	StatePosVenda              ConversationState = "pos_venda"
	StateAguardandoAprovacao   ConversationState = "aguardando_aprovacao"
)

// Known intents produced by the intent classifier
const (
	IntentSaudacao         = "saudacao"
	IntentDuvida           = "duvida"
	IntentBuscarProduto    = "buscar_produto"
	IntentAdicionarProduto = "adicionar_produto"
	IntentConfirmarItens   = "confirmar_itens"
	IntentNegociarPreco    = "negociar_preco"
	IntentFinalizarPedido  = "finalizar_pedido"
)

// Intent is the classified intention of an inbound message
type Intent struct {
	Name       string  `json:"intencao"`
	Confidence float64 `json:"confianca"`
}

// TurnContext is the input to the state transition function
type TurnContext struct {
	State      ConversationState
	Intent     Intent
	CartSize   int
	ProposalID *uuid.UUID
}

// NextState maps the current turn context to the next conversation state.
// Pure and total: when no rule matches it returns the current state with
// changed=false. A malformed intent therefore keeps the conversation where
// it is, which is the intended behavior rather than an error.
func NextState(tc TurnContext) (next ConversationState, changed bool) {
	switch tc.State {
	case StateSaudacaoInicial:
		if tc.Intent.Name == IntentBuscarProduto {
			return StateDescobertaNecessidade, true
		}

	case StateDescobertaNecessidade:
		// Only advance once a search has actually populated candidates.
		if tc.Intent.Name == IntentBuscarProduto && tc.CartSize > 0 {
			return StateSugestaoProdutos, true
		}

	case StateSugestaoProdutos:
		switch tc.Intent.Name {
		case IntentConfirmarItens, IntentAdicionarProduto:
			return StateAguardandoEscolha, true
		case IntentBuscarProduto:
			return StateRefinamentoBusca, true
		}

	case StateAguardandoEscolha:
		if tc.Intent.Name == IntentConfirmarItens {
			return StateConfirmacaoQuantidade, true
		}

	case StateConfirmacaoQuantidade:
		// Single-exit state.
		return StateMontagemProposta, true

	case StateMontagemProposta:
		if tc.ProposalID != nil {
			return StatePropostaApresentada, true
		}

	case StatePropostaApresentada:
		switch tc.Intent.Name {
		case IntentNegociarPreco:
			return StateNegociacaoAtiva, true
		case IntentFinalizarPedido:
			return StateFechamento, true
		case IntentBuscarProduto:
			return StateRefinamentoBusca, true
		}

	case StateNegociacaoAtiva:
		if tc.Intent.Name == IntentFinalizarPedido {
			return StateFechamento, true
		}

	case StateRefinamentoBusca:
		if tc.CartSize > 0 {
			return StateSugestaoProdutos, true
		}

	case StateFechamento:
		return StatePosVenda, true

	case StateAguardandoAprovacao:
		// No outgoing transition; approval is resolved out-of-band.
	}

	return tc.State, false
}

// ValidState reports whether s is a known conversation state
func ValidState(s ConversationState) bool {
	switch s {
	case StateSaudacaoInicial, StateDescobertaNecessidade, StateSugestaoProdutos,
		StateAguardandoEscolha, StateRefinamentoBusca, StateConfirmacaoQuantidade,
		StateMontagemProposta, StatePropostaApresentada, StateNegociacaoAtiva,
		StateFechamento, StatePosVenda, StateAguardandoAprovacao:
		return true
	}
	return false
}
