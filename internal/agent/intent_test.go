package agent

import "testing"

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		message        string
		wantIntent     string
		wantConfidence float64
	}{
		{"Bom dia, tudo bem?", IntentSaudacao, 0.9},
		{"preciso de luvas cirúrgicas", IntentBuscarProduto, 0.9},
		{"vocês têm fio de sutura?", IntentBuscarProduto, 0.9},
		{"adiciona mais duas caixas", IntentAdicionarProduto, 0.9},
		{"confirmo, pode ser esse", IntentConfirmarItens, 0.9},
		{"consegue um desconto?", IntentNegociarPreco, 0.9},
		{"tá caro demais", IntentNegociarPreco, 0.9},
		{"pode faturar", IntentFinalizarPedido, 0.9},
		{"vamos fechar o pedido", IntentFinalizarPedido, 0.9},
		{"sonda vesical", IntentBuscarProduto, 0.7},
		{"qual o prazo de validade?", IntentDuvida, 0.5},
		{"", IntentDuvida, 0.5},
	}

	for _, test := range tests {
		got := ClassifyIntent(test.message)
		if got.Name != test.wantIntent {
			t.Errorf("ClassifyIntent(%q) = %s, expected %s", test.message, got.Name, test.wantIntent)
		}
		if got.Confidence != test.wantConfidence {
			t.Errorf("ClassifyIntent(%q) confidence = %.1f, expected %.1f", test.message, got.Confidence, test.wantConfidence)
		}
	}
}

func TestClassifyIntentPriority(t *testing.T) {
	// Closing outranks negotiation when both appear in the same message.
	got := ClassifyIntent("sem desconto mesmo, pode faturar")
	if got.Name != IntentFinalizarPedido {
		t.Errorf("ClassifyIntent = %s, expected finalizar_pedido to win over negociar_preco", got.Name)
	}
}
