package agent

import (
	"math/rand"
	"testing"
)

func TestIdentifyGapsGreeting(t *testing.T) {
	gaps := IdentifyGaps("", "Olá, bom dia")

	expected := []GapTag{GapTipoProcedimento, GapUrgencia, GapQuantidade, GapOrcamento}
	if len(gaps) != len(expected) {
		t.Fatalf("IdentifyGaps(greeting) = %v, expected %v", gaps, expected)
	}
	for i, tag := range expected {
		if gaps[i] != tag {
			t.Errorf("gaps[%d] = %s, expected %s", i, gaps[i], tag)
		}
	}
	if HasGap(gaps, GapPreferencias) {
		t.Error("preferences flagged with two or more other gaps open")
	}
}

func TestIdentifyGapsRichMessage(t *testing.T) {
	gaps := IdentifyGaps("", "preciso de 50 sondas para uma cirurgia urgente hoje")

	if HasGap(gaps, GapTipoProcedimento) {
		t.Error("procedure type flagged despite 'cirurgia' in message")
	}
	if HasGap(gaps, GapUrgencia) {
		t.Error("urgency flagged despite 'urgente hoje' in message")
	}
	if HasGap(gaps, GapQuantidade) {
		t.Error("quantity flagged despite '50 sondas' in message")
	}
	if !HasGap(gaps, GapOrcamento) {
		t.Error("budget not flagged although never mentioned")
	}
	// Fewer than two hard gaps remain, so preferences become worth asking.
	if !HasGap(gaps, GapPreferencias) {
		t.Error("preferences not flagged with only one other gap open")
	}
}

func TestQuantityForms(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"vou querer 10 caixas", true},
		{"precisamos de 200 unidades", true},
		{"qual a quantidade ideal?", true},
		{"50 sondas", true},
		{"3 kits de sutura", true},
		{"preciso de material", false},
		{"chegou ontem", false},
	}

	for _, test := range tests {
		if got := quantityMentioned(test.text); got != test.want {
			t.Errorf("quantityMentioned(%q) = %v, expected %v", test.text, got, test.want)
		}
	}
}

func TestBudgetDetectedByCurrency(t *testing.T) {
	gaps := IdentifyGaps("", "tenho até r$ 3000 para essa compra")
	if HasGap(gaps, GapOrcamento) {
		t.Error("budget flagged despite currency amount in message")
	}
}

func TestIdentifyGapsAccumulatesContext(t *testing.T) {
	context := "Cliente: preciso de luvas para cirurgia\nAgente: qual o prazo?\n"
	gaps := IdentifyGaps(context, "é urgente, para amanhã")

	if HasGap(gaps, GapTipoProcedimento) {
		t.Error("procedure type flagged although context already answered it")
	}
	if HasGap(gaps, GapUrgencia) {
		t.Error("urgency flagged although current message answered it")
	}
	if !HasGap(gaps, GapQuantidade) {
		t.Error("quantity not flagged although never answered")
	}
}

func TestHasSufficientInfo(t *testing.T) {
	tests := []struct {
		name    string
		context string
		message string
		want    bool
	}{
		{"product plus procedure", "", "preciso de 50 sondas para uma cirurgia urgente hoje", true},
		{"product plus quantity", "", "quero 20 caixas de luvas", true},
		{"product alone", "", "vocês vendem cateter?", false},
		{"procedure without product", "", "é para uma cirurgia urgente", false},
		{"greeting", "", "bom dia, tudo bem?", false},
		{"answers spread over turns", "Cliente: preciso de seringas\n", "são para o centro cirúrgico", true},
	}

	for _, test := range tests {
		if got := HasSufficientInfo(test.context, test.message); got != test.want {
			t.Errorf("%s: HasSufficientInfo = %v, expected %v", test.name, got, test.want)
		}
	}
}

func TestNextQuestionPriorityOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	gap, _ := NextQuestion([]GapTag{GapOrcamento, GapUrgencia}, rng)
	if gap != GapUrgencia {
		t.Errorf("NextQuestion picked %s, expected urgencia first", gap)
	}

	gap, _ = NextQuestion([]GapTag{GapPreferencias, GapQuantidade}, rng)
	if gap != GapQuantidade {
		t.Errorf("NextQuestion picked %s, expected quantidade before preferencias", gap)
	}
}

func TestNextQuestionSeededPhrasing(t *testing.T) {
	gaps := []GapTag{GapTipoProcedimento}

	_, first := NextQuestion(gaps, rand.New(rand.NewSource(7)))
	_, second := NextQuestion(gaps, rand.New(rand.NewSource(7)))
	if first != second {
		t.Errorf("same seed produced different phrasings: %q vs %q", first, second)
	}

	pool := questionPool[GapTipoProcedimento]
	found := false
	for _, q := range pool {
		if q == first {
			found = true
		}
	}
	if !found {
		t.Errorf("question %q not in the tipo_procedimento pool", first)
	}
}

func TestExtractProductTerms(t *testing.T) {
	tests := []struct {
		message  string
		expected string
	}{
		{"preciso de 50 sondas para cirurgia", "sonda"},
		{"quero luvas e seringas", "luva seringa"},
		{"bom dia, tudo bem?", ""},
	}

	for _, test := range tests {
		if got := ExtractProductTerms(test.message); got != test.expected {
			t.Errorf("ExtractProductTerms(%q) = %q, expected %q", test.message, got, test.expected)
		}
	}
}

func TestNextQuestionNoGaps(t *testing.T) {
	gap, question := NextQuestion(nil, rand.New(rand.NewSource(1)))
	if gap != "" {
		t.Errorf("NextQuestion(nil) gap = %s, expected empty", gap)
	}
	if question != genericQuestion {
		t.Errorf("NextQuestion(nil) = %q, expected generic question", question)
	}
}
