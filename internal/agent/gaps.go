package agent

import (
	"math/rand"
	"regexp"
	"strings"
)

// GapTag identifies a category of qualifying information still missing
// from the conversation
type GapTag string

const (
	GapTipoProcedimento GapTag = "tipo_procedimento"
	GapQuantidade       GapTag = "quantidade"
	GapUrgencia         GapTag = "urgencia"
	GapOrcamento        GapTag = "orcamento"
	GapPreferencias     GapTag = "preferencias"
)

// gapPriority is the fixed order in which missing information is asked about
var gapPriority = []GapTag{
	GapTipoProcedimento,
	GapUrgencia,
	GapQuantidade,
	GapOrcamento,
	GapPreferencias,
}

var procedimentoKeywords = []string{
	"cirurgia", "cirúrgic", "cirurgic", "uti", "centro cirúrgico",
	"hospital", "clínica", "clinica", "ambulatori", "ambulatóri",
	"consultório", "consultorio", "internação", "internacao", "enfermaria",
	"procedimento",
}

var urgenciaKeywords = []string{
	"urgente", "urgência", "urgencia", "hoje", "amanhã", "amanha",
	"essa semana", "esta semana", "prazo", "imediato", "pra ontem",
	"o quanto antes",
}

var orcamentoKeywords = []string{
	"orçamento", "orcamento", "preço", "preco", "valor", "custo",
	"verba", "budget", "quanto custa", "quanto fica", "cotação", "cotacao",
}

var preferenciaKeywords = []string{
	"marca", "modelo", "fabricante", "prefiro", "preferência", "preferencia",
	"nacional", "importado", "estéril", "esteril", "descartável", "descartavel",
}

// productKeywords name a concrete product category; their presence is the
// "named the product" half of the sufficiency rule
var productKeywords = []string{
	"sonda", "cateter", "luva", "máscara", "mascara", "seringa", "agulha",
	"gaze", "atadura", "compressa", "fio de sutura", "sutura", "bisturi",
	"avental", "touca", "propé", "prope", "esparadrapo", "soro", "equipo",
	"dreno", "campo cirúrgico", "campo cirurgico", "curativo", "scalp",
	"cânula", "canula", "grampeador",
}

var (
	quantidadeRe = regexp.MustCompile(`\d+\s*(unidade|unidades|caixa|caixas|peça|peças|peca|pecas|kit|kits|pacote|pacotes|frasco|frascos|par|pares|un\b|cx\b)`)
	numeroItemRe = regexp.MustCompile(`\d+\s+([\p{L}]+)`)
	moedaRe      = regexp.MustCompile(`r\$\s*\d+`)
)

// quantityMentioned matches a number followed by a unit word, the word
// "quantidade", or a number directly followed by a product noun
// ("50 sondas" counts as a quantity)
func quantityMentioned(text string) bool {
	if strings.Contains(text, "quantidade") || quantidadeRe.MatchString(text) {
		return true
	}
	for _, m := range numeroItemRe.FindAllStringSubmatch(text, -1) {
		word := strings.TrimSuffix(m[1], "s")
		for _, kw := range productKeywords {
			if word == kw || word+"s" == kw {
				return true
			}
		}
	}
	return false
}

// ExtractProductTerms returns the product-category words mentioned in the
// message, space-joined for catalog search. Empty when no category is named.
func ExtractProductTerms(message string) string {
	text := strings.ToLower(message)
	var terms []string
	for _, kw := range productKeywords {
		if strings.Contains(text, kw) {
			terms = append(terms, kw)
		}
	}
	return strings.Join(terms, " ")
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// IdentifyGaps inspects the lowercased concatenation of the historical
// context and the current message and returns the qualifying-information
// categories still missing, in priority order. Preferences are only flagged
// when fewer than two other gaps remain; they are always the last thing
// worth asking about.
func IdentifyGaps(context, currentMessage string) []GapTag {
	text := strings.ToLower(context + " " + currentMessage)

	var gaps []GapTag

	if !containsAny(text, procedimentoKeywords) {
		gaps = append(gaps, GapTipoProcedimento)
	}
	if !containsAny(text, urgenciaKeywords) {
		gaps = append(gaps, GapUrgencia)
	}
	if !quantityMentioned(text) {
		gaps = append(gaps, GapQuantidade)
	}
	if !containsAny(text, orcamentoKeywords) && !moedaRe.MatchString(text) {
		gaps = append(gaps, GapOrcamento)
	}
	if len(gaps) < 2 && !containsAny(text, preferenciaKeywords) {
		gaps = append(gaps, GapPreferencias)
	}

	return gaps
}

// HasGap reports whether tag is present in gaps
func HasGap(gaps []GapTag, tag GapTag) bool {
	for _, g := range gaps {
		if g == tag {
			return true
		}
	}
	return false
}

// HasSufficientInfo reports whether enough is known to move on to product
// search: the buyer must have named a product category AND answered at least
// one of procedure type or quantity. Both signals are required.
func HasSufficientInfo(context, currentMessage string) bool {
	text := strings.ToLower(context + " " + currentMessage)

	if !containsAny(text, productKeywords) {
		return false
	}

	gaps := IdentifyGaps(context, currentMessage)
	return !HasGap(gaps, GapTipoProcedimento) || !HasGap(gaps, GapQuantidade)
}

// questionPool holds three phrasings per gap category; one is picked at
// random for variety
var questionPool = map[GapTag][3]string{
	GapTipoProcedimento: {
		"Para qual tipo de procedimento você precisa dos materiais? Cirurgia, UTI, ambulatório?",
		"Me conta um pouco mais: esses materiais são para uso hospitalar, clínica ou consultório?",
		"Em que contexto os materiais serão usados? Centro cirúrgico, enfermaria, atendimento ambulatorial?",
	},
	GapUrgencia: {
		"Qual o prazo que você tem para receber esses materiais?",
		"É uma compra urgente ou podemos trabalhar com o prazo normal de entrega?",
		"Para quando você precisa dos itens? Temos opções de entrega expressa.",
	},
	GapQuantidade: {
		"Qual quantidade você está precisando? Em unidades ou caixas, como preferir.",
		"Quantas unidades ou caixas você gostaria de cotar?",
		"Me passa uma ideia de volume: quantas peças ou kits você precisa?",
	},
	GapOrcamento: {
		"Você tem um orçamento de referência para essa compra?",
		"Existe algum valor-alvo que devemos considerar na cotação?",
		"Para eu montar a melhor proposta: há uma verba definida para esses itens?",
	},
	GapPreferencias: {
		"Você tem preferência por alguma marca ou fabricante específico?",
		"Trabalha com alguma marca de costume ou posso sugerir as melhores opções?",
		"Prefere material nacional ou importado? Alguma marca de confiança?",
	},
}

const genericQuestion = "Pode me contar mais detalhes sobre o que você está precisando? Assim consigo te ajudar melhor."

// NextQuestion selects the base qualifying question for the highest-priority
// gap present. rng is injected so tests can pin the phrasing choice. When no
// gap remains a generic catch-all prompt is returned.
func NextQuestion(gaps []GapTag, rng *rand.Rand) (GapTag, string) {
	for _, tag := range gapPriority {
		if !HasGap(gaps, tag) {
			continue
		}
		pool := questionPool[tag]
		return tag, pool[rng.Intn(len(pool))]
	}
	return "", genericQuestion
}
