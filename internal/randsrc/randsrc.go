package randsrc

import (
	"math/rand/v2"
	"sync"
	"time"

	"chartlens/internal/interfaces"
)

// Locked is a goroutine-safe RandomSource over a PCG generator
type Locked struct {
	mu sync.Mutex
	r  *rand.Rand
}

var _ interfaces.RandomSource = (*Locked)(nil)

// New seeds a source. Seed 0 means seed from the clock.
func New(seed uint64) *Locked {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Locked{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *Locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}
