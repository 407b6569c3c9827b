package display

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"chartlens/internal/interfaces"
	"chartlens/internal/types"
)

var ticks = []rune("▁▂▃▄▅▆▇█")

// SparklineRenderer prints the series as one line of block characters.
type SparklineRenderer struct {
	w io.Writer
}

var _ interfaces.Renderer = (*SparklineRenderer)(nil)

func NewSparklineRenderer(w io.Writer) *SparklineRenderer {
	return &SparklineRenderer{w: w}
}

func (r *SparklineRenderer) Render(_ context.Context, labels []string, values []float64, style types.ChartStyle) error {
	if len(labels) != len(values) {
		return errors.New("labels and values differ in length")
	}
	if len(values) == 0 {
		_, err := fmt.Fprintf(r.w, "%s: (empty)\n", style.Label)
		return err
	}
	first, last := labels[0], labels[len(labels)-1]
	_, err := fmt.Fprintf(r.w, "%s %s %s..%s %.2f\n", style.Label, Sparkline(values), first, last, values[len(values)-1])
	return err
}

// Sparkline scales values onto eight block heights.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	var sb strings.Builder
	for _, v := range values {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(ticks)-1))
		}
		sb.WriteRune(ticks[idx])
	}
	return sb.String()
}
