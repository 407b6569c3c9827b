package types

// Verdict is the outcome of the "is this a chart?" gate
type Verdict struct {
	IsChart          bool `json:"is_chart"`
	Wide             bool `json:"wide"`
	HasGraphElements bool `json:"has_graph_elements"`
	HasChartColors   bool `json:"has_chart_colors"`
}

// Direction is the binary trend call of a Report
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
)

// IsUp reports whether d is DirectionUp.
func (d Direction) IsUp() bool { return d == DirectionUp }

// RecommendationTier buckets a Report by confidence
type RecommendationTier string

const (
	TierStrong   RecommendationTier = "STRONG"
	TierModerate RecommendationTier = "MODERATE"
	TierMild     RecommendationTier = "MILD"
)

// Report is the mock structured analysis of an accepted image
type Report struct {
	Direction        Direction          `json:"direction"`
	Confidence       int                `json:"confidence"` // percent, 70..99
	PatternSummary   string             `json:"pattern_summary"`
	IndicatorSummary string             `json:"indicator_summary"`
	Recommendation   string             `json:"recommendation"`
	Tier             RecommendationTier `json:"tier"`
}

// Headline is the trend title shown above the report.
func (r Report) Headline() string {
	if r.Direction.IsUp() {
		return "📈 Tendência de Alta"
	}
	return "📉 Tendência de Baixa"
}

// Color is the accent used for the headline, confidence bar and recommendation.
func (r Report) Color() string {
	if r.Direction.IsUp() {
		return "#00e676"
	}
	return "#ff4b4b"
}
