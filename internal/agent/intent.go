package agent

import "strings"

var intentKeywords = []struct {
	intent   string
	keywords []string
}{
	{IntentFinalizarPedido, []string{
		"finalizar", "fechar pedido", "pode faturar", "fechado", "vamos fechar",
		"pode emitir", "aprovar proposta", "aprovo a proposta",
	}},
	{IntentNegociarPreco, []string{
		"desconto", "mais barato", "negociar", "melhorar o preço", "melhorar o preco",
		"baixar o valor", "tá caro", "ta caro", "muito caro", "condição melhor", "condicao melhor",
	}},
	{IntentConfirmarItens, []string{
		"confirmo", "pode ser esse", "pode ser essa", "esses mesmos", "essas mesmas",
		"fico com", "quero esse", "quero essa", "confirmar itens", "é esse mesmo", "e esse mesmo",
	}},
	{IntentAdicionarProduto, []string{
		"adiciona", "adicionar", "inclui", "incluir", "coloca também", "coloca tambem",
		"acrescenta", "mais um item",
	}},
	{IntentBuscarProduto, []string{
		"preciso", "procuro", "procurando", "quero comprar", "quero cotar", "cotação",
		"cotacao", "orçamento de", "orcamento de", "vocês têm", "voces tem", "tem disponível",
		"tem disponivel", "busco",
	}},
	{IntentSaudacao, []string{
		"bom dia", "boa tarde", "boa noite", "olá", "ola", "oi ", "tudo bem",
	}},
}

// ClassifyIntent derives the message intent from Portuguese keyword matching.
// A message naming a product category counts as a product search even without
// an explicit verb. Unrecognized messages classify as duvida.
func ClassifyIntent(message string) Intent {
	text := " " + strings.ToLower(strings.TrimSpace(message)) + " "

	for _, entry := range intentKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				return Intent{Name: entry.intent, Confidence: 0.9}
			}
		}
	}

	if containsAny(text, productKeywords) {
		return Intent{Name: IntentBuscarProduto, Confidence: 0.7}
	}

	return Intent{Name: IntentDuvida, Confidence: 0.5}
}
