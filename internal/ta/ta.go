package ta

import "math"

// SMA is the mean of the last n values, NaN when there are fewer.
func SMA(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		sum += vals[i]
	}
	return sum / float64(n)
}

// RSI is the simple-average relative strength index over the last period moves.
func RSI(vals []float64, period int) float64 {
	if len(vals) < period+1 || period <= 0 {
		return math.NaN()
	}
	gain, loss := 0.0, 0.0
	for i := len(vals) - period; i < len(vals); i++ {
		d := vals[i] - vals[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	if loss == 0 {
		return 100.0
	}
	rs := gain / loss
	return 100.0 - (100.0 / (1.0 + rs))
}

func StdDev(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	m := SMA(vals, n)
	s := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		d := vals[i] - m
		s += d * d
	}
	return math.Sqrt(s / float64(n))
}

func Bollinger(vals []float64, n int, k float64) (mid, up, low float64) {
	mid = SMA(vals, n)
	sd := StdDev(vals, n)
	up = mid + k*sd
	low = mid - k*sd
	return
}

// Summary describes the tail of a price series. Indicators that need more
// points than the series has are nil.
type Summary struct {
	Points    int      `json:"points"`
	Last      float64  `json:"last"`
	Min       float64  `json:"min"`
	Max       float64  `json:"max"`
	ChangePct float64  `json:"change_pct"` // first to last
	SMA7      *float64 `json:"sma_7,omitempty"`
	SMA20     *float64 `json:"sma_20,omitempty"`
	RSI14     *float64 `json:"rsi_14,omitempty"`
	BandUpper *float64 `json:"bollinger_upper,omitempty"`
	BandLower *float64 `json:"bollinger_lower,omitempty"`
}

func Summarize(vals []float64) Summary {
	s := Summary{Points: len(vals)}
	if len(vals) == 0 {
		return s
	}
	s.Last = vals[len(vals)-1]
	s.Min, s.Max = vals[0], vals[0]
	for _, v := range vals[1:] {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	if vals[0] != 0 {
		s.ChangePct = (s.Last - vals[0]) / vals[0] * 100
	}
	s.SMA7 = finite(SMA(vals, 7))
	s.SMA20 = finite(SMA(vals, 20))
	s.RSI14 = finite(RSI(vals, 14))
	_, up, low := Bollinger(vals, 20, 2)
	s.BandUpper = finite(up)
	s.BandLower = finite(low)
	return s
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
