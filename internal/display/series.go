package display

import (
	"fmt"

	"chartlens/internal/interfaces"
	"chartlens/internal/types"
)

// SeedPoints is the size of the initial history.
const SeedPoints = 30

var (
	upFactors   = [3]float64{1.02, 1.04, 1.06}
	downFactors = [3]float64{0.98, 0.96, 0.94}
)

// Seed builds n synthetic points "Dia 1".."Dia n" valued in [100,150).
func Seed(rnd interfaces.RandomSource, n int) types.Series {
	s := make(types.Series, n)
	for i := range s {
		s[i] = types.Point{
			Label: fmt.Sprintf("Dia %d", i+1),
			Value: 100 + rnd.Float64()*50,
		}
	}
	return s
}

// AppendForecast returns a copy of s with three forecast points "D+1".."D+3"
// derived from the last value of s. The input is never modified and an empty
// series is returned unchanged.
func AppendForecast(s types.Series, dir types.Direction) types.Series {
	last, ok := s.Last()
	if !ok {
		return s.Clone()
	}
	factors := downFactors
	if dir.IsUp() {
		factors = upFactors
	}
	out := make(types.Series, len(s), len(s)+len(factors))
	copy(out, s)
	for i, f := range factors {
		out = append(out, types.Point{
			Label: fmt.Sprintf("D+%d", i+1),
			Value: last.Value * f,
		})
	}
	return out
}
