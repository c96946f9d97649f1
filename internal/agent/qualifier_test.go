package agent

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/google/uuid"
)

type stubRephraser struct {
	rephrased string
	err       error

	gotBase string
}

func (s *stubRephraser) Rephrase(ctx context.Context, baseQuestion, conversationContext string) (string, error) {
	s.gotBase = baseQuestion
	return s.rephrased, s.err
}

func TestAskSkipsWhenInfoSufficient(t *testing.T) {
	q := NewQualifier(nil, &stubRephraser{}, nil, rand.New(rand.NewSource(1)))

	result := q.Ask(context.Background(), uuid.New(), StateDescobertaNecessidade,
		"", "preciso de 50 sondas para uma cirurgia urgente hoje")
	if !result.Skip {
		t.Error("expected Skip with product, procedure and quantity all present")
	}
	if result.Question != "" {
		t.Errorf("skipped pass produced a question: %q", result.Question)
	}
}

func TestAskReturnsRephrasedQuestion(t *testing.T) {
	reph := &stubRephraser{rephrased: "Me conta, pra qual procedimento seria?"}
	q := NewQualifier(nil, reph, nil, rand.New(rand.NewSource(1)))

	result := q.Ask(context.Background(), uuid.New(), StateSaudacaoInicial, "", "bom dia")
	if result.Skip {
		t.Fatal("greeting should not skip the qualifying pass")
	}
	if result.Gap != GapTipoProcedimento {
		t.Errorf("gap = %s, expected tipo_procedimento first", result.Gap)
	}
	if result.Question != reph.rephrased {
		t.Errorf("question = %q, expected the rephrased text", result.Question)
	}
	if result.UsedFallback {
		t.Error("UsedFallback set on a successful rephrase")
	}

	pool := questionPool[GapTipoProcedimento]
	found := false
	for _, base := range pool {
		if base == reph.gotBase {
			found = true
		}
	}
	if !found {
		t.Errorf("rephraser received %q, not a base question from the pool", reph.gotBase)
	}
}

func TestAskFallsBackToBaseQuestion(t *testing.T) {
	reph := &stubRephraser{err: errors.New("timeout")}
	q := NewQualifier(nil, reph, nil, rand.New(rand.NewSource(3)))

	result := q.Ask(context.Background(), uuid.New(), StateSaudacaoInicial, "", "olá")
	if result.Skip {
		t.Fatal("greeting should not skip the qualifying pass")
	}
	if !result.UsedFallback {
		t.Error("UsedFallback not set after rephrasing failure")
	}
	if result.Question != reph.gotBase {
		t.Errorf("question = %q, expected the base question %q verbatim", result.Question, reph.gotBase)
	}
}

func TestAskFallsBackOnEmptyRephrase(t *testing.T) {
	reph := &stubRephraser{rephrased: ""}
	q := NewQualifier(nil, reph, nil, rand.New(rand.NewSource(3)))

	result := q.Ask(context.Background(), uuid.New(), StateSaudacaoInicial, "", "olá")
	if !result.UsedFallback {
		t.Error("UsedFallback not set for an empty rephrase")
	}
	if result.Question == "" {
		t.Error("empty question returned, expected the base question")
	}
}
