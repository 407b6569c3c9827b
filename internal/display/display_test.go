package display

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"chartlens/internal/types"
)

type constRand float64

func (c constRand) Float64() float64 { return float64(c) }

// recordingRenderer keeps every call
type recordingRenderer struct {
	calls [][]float64
	err   error
}

func (r *recordingRenderer) Render(_ context.Context, labels []string, values []float64, _ types.ChartStyle) error {
	r.calls = append(r.calls, values)
	return r.err
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSeed(t *testing.T) {
	s := Seed(constRand(0.5), SeedPoints)
	if len(s) != 30 {
		t.Fatalf("Expected 30 points, got %d", len(s))
	}
	if s[0].Label != "Dia 1" || s[29].Label != "Dia 30" {
		t.Errorf("Unexpected labels %q..%q", s[0].Label, s[29].Label)
	}
	for _, p := range s {
		if !near(p.Value, 125) {
			t.Errorf("Expected value 125 for a 0.5 draw, got %f", p.Value)
		}
	}
}

func TestAppendForecast(t *testing.T) {
	base := types.Series{{Label: "Dia 1", Value: 90}, {Label: "Dia 2", Value: 100}}

	tests := []struct {
		dir  types.Direction
		want []float64
	}{
		{types.DirectionUp, []float64{102, 104, 106}},
		{types.DirectionDown, []float64{98, 96, 94}},
	}

	for _, tt := range tests {
		t.Run(string(tt.dir), func(t *testing.T) {
			out := AppendForecast(base, tt.dir)
			if len(out) != len(base)+3 {
				t.Fatalf("Expected %d points, got %d", len(base)+3, len(out))
			}
			for i, want := range tt.want {
				p := out[len(base)+i]
				if !near(p.Value, want) {
					t.Errorf("Expected %s=%f, got %f", p.Label, want, p.Value)
				}
			}
			if out[2].Label != "D+1" || out[4].Label != "D+3" {
				t.Errorf("Unexpected forecast labels %v", out.Labels())
			}
		})
	}

	if len(base) != 2 || base[1].Value != 100 {
		t.Errorf("Expected input to stay untouched, got %v", base)
	}
}

func TestAppendForecastMonotonic(t *testing.T) {
	base := Seed(constRand(0.3), 5)
	up := AppendForecast(base, types.DirectionUp).Values()[4:]
	down := AppendForecast(base, types.DirectionDown).Values()[4:]
	for i := 1; i < len(up); i++ {
		if up[i] <= up[i-1] {
			t.Errorf("Expected UP forecast strictly increasing, got %v", up)
		}
		if down[i] >= down[i-1] {
			t.Errorf("Expected DOWN forecast strictly decreasing, got %v", down)
		}
	}
}

func TestAppendForecastEmpty(t *testing.T) {
	if out := AppendForecast(nil, types.DirectionUp); len(out) != 0 {
		t.Errorf("Expected empty series to stay empty, got %d points", len(out))
	}
}

func TestBoardApply(t *testing.T) {
	r := &recordingRenderer{}
	b := NewBoard(Seed(constRand(0.5), SeedPoints), r)

	added, err := b.Apply(context.Background(), types.DirectionUp)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if added != 3 {
		t.Errorf("Expected 3 points added, got %d", added)
	}
	pts := b.Points()
	if len(pts) != 33 {
		t.Fatalf("Expected 33 points, got %d", len(pts))
	}
	if pts[30].Label != "D+1" {
		t.Errorf("Expected point 31 labeled D+1, got %q", pts[30].Label)
	}
	if len(r.calls) != 1 || len(r.calls[0]) != 33 {
		t.Errorf("Expected one full redraw of 33 values, got %v calls", len(r.calls))
	}

	// a second analysis extends from the new last point
	if _, err := b.Apply(context.Background(), types.DirectionDown); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	pts = b.Points()
	if len(pts) != 36 {
		t.Errorf("Expected 36 points, got %d", len(pts))
	}
	if !near(pts[33].Value, pts[32].Value*0.98) {
		t.Errorf("Expected forecast off the latest value, got %f", pts[33].Value)
	}
}

func TestBoardMaxPoints(t *testing.T) {
	b := NewBoard(Seed(constRand(0.5), 30), nil, WithMaxPoints(31))
	if _, err := b.Apply(context.Background(), types.DirectionUp); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	pts := b.Points()
	if len(pts) != 31 {
		t.Fatalf("Expected 31 points, got %d", len(pts))
	}
	if pts[0].Label != "Dia 3" || pts[30].Label != "D+3" {
		t.Errorf("Expected the oldest points to be dropped, got %q..%q", pts[0].Label, pts[30].Label)
	}
}

func TestBoardRenderError(t *testing.T) {
	r := &recordingRenderer{err: errors.New("canvas gone")}
	b := NewBoard(Seed(constRand(0.5), 30), r)

	_, err := b.Apply(context.Background(), types.DirectionUp)
	if err == nil {
		t.Fatal("Expected render error")
	}
	if b.Len() != 33 {
		t.Errorf("Expected series to advance despite render failure, got %d", b.Len())
	}
}

func TestBoardPointsIsCopy(t *testing.T) {
	b := NewBoard(Seed(constRand(0.5), 3), nil)
	pts := b.Points()
	pts[0].Value = -1
	if b.Points()[0].Value == -1 {
		t.Error("Expected Points to return a copy")
	}
}

func TestChartJSRenderer(t *testing.T) {
	r := NewChartJSRenderer()
	if _, ok := r.Config(); ok {
		t.Fatal("Expected no config before the first render")
	}

	b := NewBoard(Seed(constRand(0.5), 30), r)
	if err := b.Draw(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	cfg, ok := r.Config()
	if !ok {
		t.Fatal("Expected a config after Draw")
	}
	if cfg.Type != "line" || len(cfg.Data.Labels) != 30 {
		t.Errorf("Unexpected config %s with %d labels", cfg.Type, len(cfg.Data.Labels))
	}
	ds := cfg.Data.Datasets[0]
	if ds.Label != "Preço" || ds.BorderColor != "#00e676" || ds.BorderWidth != 2 || ds.PointRadius != 0 {
		t.Errorf("Unexpected dataset style %+v", ds)
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"x":{"grid":{"display":false}}`) {
		t.Errorf("Expected hidden x grid in %s", raw)
	}
	if r.Renders() != 1 {
		t.Errorf("Expected 1 render, got %d", r.Renders())
	}
}

func TestSparklineRenderer(t *testing.T) {
	var buf bytes.Buffer
	s := types.Series{{Label: "Dia 1", Value: 1}, {Label: "Dia 2", Value: 5}, {Label: "D+1", Value: 9}}
	if err := NewSparklineRenderer(&buf).Render(context.Background(), s.Labels(), s.Values(), types.DefaultChartStyle()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "▁▄█") {
		t.Errorf("Expected scaled sparkline, got %q", out)
	}
	if !strings.Contains(out, "Dia 1..D+1") {
		t.Errorf("Expected label range, got %q", out)
	}
}
