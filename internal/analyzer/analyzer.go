package analyzer

import (
	"context"
	"fmt"
	"strings"

	"chartlens/internal/interfaces"
	"chartlens/internal/logger"
	"chartlens/internal/types"
)

const (
	minConfidence   = 70
	confidenceRange = 30

	strongAbove   = 80
	moderateAbove = 60
)

var (
	upPatterns = []string{
		"Fundos ascendentes",
		"Rompeu resistência",
		"Média móvel de 50 > 200",
		"Padrão de triângulo ascendente",
	}
	downPatterns = []string{
		"Topos descendentes",
		"Rompeu suporte",
		"Média móvel de 50 < 200",
		"Padrão de triângulo descendente",
	}
)

type recommendation struct {
	up, down string
}

var recommendations = map[types.RecommendationTier]recommendation{
	types.TierStrong: {
		up:   "FORTE SINAL DE COMPRA (Alocação 70-80%)",
		down: "FORTE SINAL DE VENDA (Reduza posição)",
	},
	types.TierModerate: {
		up:   "Sinal de compra moderado (Alocação 40-50%)",
		down: "Sinal de venda moderado (Proteja ganhos)",
	},
	types.TierMild: {
		up:   "Leve tendência de alta (Aguardar confirmação)",
		down: "Leve tendência de baixa (Manter cautela)",
	},
}

// Mock fabricates a trend report from random draws. The image is never read.
type Mock struct {
	rnd interfaces.RandomSource
}

var _ interfaces.ChartAnalyzer = (*Mock)(nil)

func New(rnd interfaces.RandomSource) *Mock {
	return &Mock{rnd: rnd}
}

// Analyze draws, in order: direction, confidence, pattern pick, RSI.
func (m *Mock) Analyze(ctx context.Context) (types.Report, error) {
	if err := ctx.Err(); err != nil {
		return types.Report{}, err
	}

	dir := types.DirectionDown
	if m.rnd.Float64() > 0.5 {
		dir = types.DirectionUp
	}
	confidence := minConfidence + int(m.rnd.Float64()*confidenceRange)

	tier, rec := Recommend(dir, confidence)
	r := types.Report{
		Direction:        dir,
		Confidence:       confidence,
		PatternSummary:   m.patterns(dir),
		IndicatorSummary: m.indicators(dir),
		Recommendation:   rec,
		Tier:             tier,
	}
	logger.Debug(ctx, "Mock report generated", "direction", r.Direction, "confidence", r.Confidence, "tier", r.Tier)
	return r, nil
}

// Recommend maps a direction and confidence to a tier and its advice text.
func Recommend(dir types.Direction, confidence int) (types.RecommendationTier, string) {
	tier := types.TierMild
	switch {
	case confidence > strongAbove:
		tier = types.TierStrong
	case confidence > moderateAbove:
		tier = types.TierModerate
	}
	rec := recommendations[tier]
	if dir.IsUp() {
		return tier, rec.up
	}
	return tier, rec.down
}

// patterns always lists the first two phrases, then one random pick which may repeat them.
func (m *Mock) patterns(dir types.Direction) string {
	list := downPatterns
	if dir.IsUp() {
		list = upPatterns
	}
	pick := list[pickIndex(m.rnd.Float64(), len(list))]
	return strings.Join(list[:2], ", ") + ", " + pick
}

func (m *Mock) indicators(dir types.Direction) string {
	base, macd, volume := 30, "Negativo", "Abaixo da média"
	if dir.IsUp() {
		base, macd, volume = 50, "Positivo", "Acima da média"
	}
	rsi := base + int(m.rnd.Float64()*20)
	return fmt.Sprintf("RSI: %d | MACD: %s | Volume: %s", rsi, macd, volume)
}

func pickIndex(f float64, n int) int {
	i := int(f * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
