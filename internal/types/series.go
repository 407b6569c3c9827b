package types

// Point is one labeled value of the price series
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Series is an ordered price history; order is significant
type Series []Point

// Labels returns the point labels in order.
func (s Series) Labels() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.Label
	}
	return out
}

// Values returns the point values in order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Last returns the final point, ok=false for an empty series.
func (s Series) Last() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	return s[len(s)-1], true
}

// Clone returns an independent copy.
func (s Series) Clone() Series {
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// ChartStyle is what the renderer needs besides the data
type ChartStyle struct {
	Label       string  `json:"label"`
	LineColor   string  `json:"line_color"`
	LineWidth   int     `json:"line_width"`
	Tension     float64 `json:"tension"`
	PointRadius int     `json:"point_radius"`
	Fill        bool    `json:"fill"`
}

// DefaultChartStyle is the green price line of the demo.
func DefaultChartStyle() ChartStyle {
	return ChartStyle{
		Label:       "Preço",
		LineColor:   "#00e676",
		LineWidth:   2,
		Tension:     0.1,
		PointRadius: 0,
		Fill:        false,
	}
}
