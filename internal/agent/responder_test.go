package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

type stubGenerator struct {
	reply string
	err   error

	gotSystem string
	gotUser   string
}

func (s *stubGenerator) Complete(ctx context.Context, systemPrompt, userMessage string, maxTokens int) (string, error) {
	s.gotSystem = systemPrompt
	s.gotUser = userMessage
	return s.reply, s.err
}

func TestGenerateReply(t *testing.T) {
	gen := &stubGenerator{reply: "Temos sondas em estoque, posso te passar os valores?"}
	r := NewResponder(gen)

	reply := r.GenerateReply(context.Background(), "tem sonda?", "", CustomerProfile{Type: ProfileNovo}, nil, StateSugestaoProdutos)
	if reply != gen.reply {
		t.Errorf("reply = %q, expected generator output", reply)
	}
	if gen.gotUser != "tem sonda?" {
		t.Errorf("user message = %q", gen.gotUser)
	}
}

func TestGenerateReplyFallbackOnError(t *testing.T) {
	r := NewResponder(&stubGenerator{err: errors.New("upstream 500")})

	reply := r.GenerateReply(context.Background(), "oi", "", CustomerProfile{Type: ProfileLead}, nil, StateSaudacaoInicial)
	if reply != FallbackReply {
		t.Errorf("reply = %q, expected fallback on generator error", reply)
	}
}

func TestGenerateReplyFallbackOnEmptyCompletion(t *testing.T) {
	r := NewResponder(&stubGenerator{reply: "   \n"})

	reply := r.GenerateReply(context.Background(), "oi", "", CustomerProfile{}, nil, StateSaudacaoInicial)
	if reply != FallbackReply {
		t.Errorf("reply = %q, expected fallback on blank completion", reply)
	}
}

func TestBuildSystemPromptContent(t *testing.T) {
	profile := CustomerProfile{
		Type:          ProfileVIP,
		Name:          "Clínica Vida",
		PurchaseCount: 14,
		AverageTicket: 8200.50,
		Tags:          []string{"vip", "ticket_alto"},
	}
	products := []CandidateProduct{
		{Name: "Sonda Foley nº 16", Price: "4.90", Stock: 320},
		{Name: "Luva cirúrgica 7.5", Price: "89.00", Stock: 50},
	}

	prompt := BuildSystemPrompt(profile, StateNegociacaoAtiva, "Cliente: quero desconto\n", products)

	for _, want := range []string{
		"cliente_vip",
		"Clínica Vida",
		"negociacao_ativa",
		"Sonda Foley nº 16",
		"estoque: 320",
		"quero desconto",
		"descontos acima de 5%",
		"condições especiais",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildSystemPromptLimitsProducts(t *testing.T) {
	products := make([]CandidateProduct, 8)
	for i := range products {
		products[i] = CandidateProduct{Name: "Item", Price: "1.00", Stock: i}
	}

	prompt := BuildSystemPrompt(CustomerProfile{Type: ProfileRegular}, StateSugestaoProdutos, "", products)
	if got := strings.Count(prompt, "- Item |"); got != 5 {
		t.Errorf("prompt lists %d products, expected 5", got)
	}
}

func TestHistoryTailPreservesRuneBoundaries(t *testing.T) {
	tests := []struct {
		history  string
		max      int
		expected string
	}{
		{"ação", 3, "ão"},
		{"ação", 2, "o"},
		{"histórico", 20, "histórico"},
		{"médio", 4, "dio"},
	}

	for _, test := range tests {
		got := historyTail(test.history, test.max)
		if got != test.expected {
			t.Errorf("historyTail(%q, %d) = %q, expected %q", test.history, test.max, got, test.expected)
		}
		if !utf8.ValidString(got) {
			t.Errorf("historyTail(%q, %d) produced invalid UTF-8", test.history, test.max)
		}
	}
}

func TestBuildSystemPromptTruncatesHistory(t *testing.T) {
	long := strings.Repeat("Cliente: mensagem antiga\n", 200)
	marker := "Cliente: mensagem final"
	history := long + marker

	prompt := BuildSystemPrompt(CustomerProfile{Type: ProfileRegular}, StateSaudacaoInicial, history, nil)
	if !strings.Contains(prompt, marker) {
		t.Error("prompt dropped the tail of the history")
	}
	if strings.Contains(prompt, long) {
		t.Error("prompt kept the full history beyond the context bound")
	}
}
