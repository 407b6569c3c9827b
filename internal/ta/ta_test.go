package ta

import (
	"math"
	"testing"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSMA(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5}
	if got := SMA(vals, 2); !almost(got, 4.5) {
		t.Errorf("Expected 4.5, got %f", got)
	}
	if got := SMA(vals, 6); !math.IsNaN(got) {
		t.Errorf("Expected NaN for short input, got %f", got)
	}
}

func TestRSI(t *testing.T) {
	rising := []float64{1, 2, 3, 4}
	if got := RSI(rising, 3); got != 100 {
		t.Errorf("Expected 100 with no losses, got %f", got)
	}
	mixed := []float64{10, 12, 11}
	// gain 2, loss 1 -> rs 2 -> 66.67
	if got := RSI(mixed, 2); !almost(got, 100-100/3.0) {
		t.Errorf("Expected 66.67, got %f", got)
	}
}

func TestBollingerFlatSeries(t *testing.T) {
	vals := make([]float64, 20)
	for i := range vals {
		vals[i] = 5
	}
	mid, up, low := Bollinger(vals, 20, 2)
	if mid != 5 || up != 5 || low != 5 {
		t.Errorf("Expected flat bands at 5, got %f %f %f", mid, up, low)
	}
}

func TestSummarize(t *testing.T) {
	if s := Summarize(nil); s.Points != 0 || s.SMA7 != nil {
		t.Errorf("Expected empty summary, got %+v", s)
	}

	vals := []float64{100, 110, 105, 120, 90, 100, 130, 125}
	s := Summarize(vals)
	if s.Points != 8 || s.Last != 125 || s.Min != 90 || s.Max != 130 {
		t.Errorf("Unexpected bounds: %+v", s)
	}
	if !almost(s.ChangePct, 25) {
		t.Errorf("Expected 25%% change, got %f", s.ChangePct)
	}
	if s.SMA7 == nil {
		t.Fatal("Expected SMA7 with 8 points")
	}
	if s.SMA20 != nil || s.RSI14 != nil || s.BandUpper != nil {
		t.Errorf("Expected long-window indicators to be nil, got %+v", s)
	}
}
