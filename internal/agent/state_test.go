package agent

import (
	"testing"

	"github.com/google/uuid"
)

func TestNextStateTransitions(t *testing.T) {
	proposalID := uuid.New()

	tests := []struct {
		name       string
		tc         TurnContext
		want       ConversationState
		wantChange bool
	}{
		{
			"saudacao advances on product search",
			TurnContext{State: StateSaudacaoInicial, Intent: Intent{Name: IntentBuscarProduto}},
			StateDescobertaNecessidade, true,
		},
		{
			"saudacao stays on greeting",
			TurnContext{State: StateSaudacaoInicial, Intent: Intent{Name: IntentSaudacao}},
			StateSaudacaoInicial, false,
		},
		{
			"descoberta needs candidates to advance",
			TurnContext{State: StateDescobertaNecessidade, Intent: Intent{Name: IntentBuscarProduto}, CartSize: 0},
			StateDescobertaNecessidade, false,
		},
		{
			"descoberta advances with candidates",
			TurnContext{State: StateDescobertaNecessidade, Intent: Intent{Name: IntentBuscarProduto}, CartSize: 3},
			StateSugestaoProdutos, true,
		},
		{
			"sugestao to escolha on confirmation",
			TurnContext{State: StateSugestaoProdutos, Intent: Intent{Name: IntentConfirmarItens}},
			StateAguardandoEscolha, true,
		},
		{
			"sugestao to escolha on add",
			TurnContext{State: StateSugestaoProdutos, Intent: Intent{Name: IntentAdicionarProduto}},
			StateAguardandoEscolha, true,
		},
		{
			"sugestao to refinamento on new search",
			TurnContext{State: StateSugestaoProdutos, Intent: Intent{Name: IntentBuscarProduto}},
			StateRefinamentoBusca, true,
		},
		{
			"escolha to confirmacao",
			TurnContext{State: StateAguardandoEscolha, Intent: Intent{Name: IntentConfirmarItens}},
			StateConfirmacaoQuantidade, true,
		},
		{
			"confirmacao always advances",
			TurnContext{State: StateConfirmacaoQuantidade, Intent: Intent{Name: IntentDuvida}},
			StateMontagemProposta, true,
		},
		{
			"montagem waits for proposal",
			TurnContext{State: StateMontagemProposta, Intent: Intent{Name: IntentDuvida}},
			StateMontagemProposta, false,
		},
		{
			"montagem advances once proposal exists",
			TurnContext{State: StateMontagemProposta, Intent: Intent{Name: IntentDuvida}, ProposalID: &proposalID},
			StatePropostaApresentada, true,
		},
		{
			"proposta to negociacao",
			TurnContext{State: StatePropostaApresentada, Intent: Intent{Name: IntentNegociarPreco}},
			StateNegociacaoAtiva, true,
		},
		{
			"proposta to fechamento",
			TurnContext{State: StatePropostaApresentada, Intent: Intent{Name: IntentFinalizarPedido}},
			StateFechamento, true,
		},
		{
			"proposta back to refinamento",
			TurnContext{State: StatePropostaApresentada, Intent: Intent{Name: IntentBuscarProduto}},
			StateRefinamentoBusca, true,
		},
		{
			"negociacao to fechamento",
			TurnContext{State: StateNegociacaoAtiva, Intent: Intent{Name: IntentFinalizarPedido}},
			StateFechamento, true,
		},
		{
			"negociacao stays while haggling",
			TurnContext{State: StateNegociacaoAtiva, Intent: Intent{Name: IntentNegociarPreco}},
			StateNegociacaoAtiva, false,
		},
		{
			"refinamento back to sugestao with candidates",
			TurnContext{State: StateRefinamentoBusca, Intent: Intent{Name: IntentDuvida}, CartSize: 2},
			StateSugestaoProdutos, true,
		},
		{
			"refinamento stays without candidates",
			TurnContext{State: StateRefinamentoBusca, Intent: Intent{Name: IntentDuvida}},
			StateRefinamentoBusca, false,
		},
		{
			"fechamento always reaches pos venda",
			TurnContext{State: StateFechamento, Intent: Intent{Name: IntentSaudacao}},
			StatePosVenda, true,
		},
		{
			"aguardando aprovacao never exits",
			TurnContext{State: StateAguardandoAprovacao, Intent: Intent{Name: IntentFinalizarPedido}},
			StateAguardandoAprovacao, false,
		},
		{
			"pos venda has no rule",
			TurnContext{State: StatePosVenda, Intent: Intent{Name: IntentBuscarProduto}},
			StatePosVenda, false,
		},
	}

	for _, test := range tests {
		got, changed := NextState(test.tc)
		if got != test.want || changed != test.wantChange {
			t.Errorf("%s: NextState(%+v) = (%s, %v), expected (%s, %v)",
				test.name, test.tc, got, changed, test.want, test.wantChange)
		}
	}
}

func TestNextStateUnmatchedIntentKeepsState(t *testing.T) {
	states := []ConversationState{
		StateSaudacaoInicial, StateDescobertaNecessidade, StateSugestaoProdutos,
		StateAguardandoEscolha, StateMontagemProposta, StatePropostaApresentada,
		StateNegociacaoAtiva, StateRefinamentoBusca, StatePosVenda,
		StateAguardandoAprovacao,
	}

	for _, state := range states {
		got, changed := NextState(TurnContext{State: state, Intent: Intent{Name: "intencao_desconhecida"}})
		if changed || got != state {
			t.Errorf("NextState(%s, unknown intent) = (%s, %v), expected no transition", state, got, changed)
		}
	}
}

func TestNextStateIsPure(t *testing.T) {
	tc := TurnContext{State: StateSugestaoProdutos, Intent: Intent{Name: IntentConfirmarItens}, CartSize: 1}

	first, _ := NextState(tc)
	second, _ := NextState(tc)
	if first != second {
		t.Errorf("NextState not deterministic: %s then %s", first, second)
	}
	if tc.State != StateSugestaoProdutos {
		t.Errorf("NextState mutated its input: %s", tc.State)
	}
}

func TestValidState(t *testing.T) {
	if !ValidState(StateNegociacaoAtiva) {
		t.Error("ValidState(negociacao_ativa) = false, expected true")
	}
	if ValidState("estado_inexistente") {
		t.Error("ValidState(estado_inexistente) = true, expected false")
	}
	if ValidState("") {
		t.Error("ValidState(\"\") = true, expected false")
	}
}
