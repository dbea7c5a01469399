package selectors

import (
	"math/rand/v2"
	"sync"
)

// Picker chooses an index in [0, n). Tests inject a fixed Picker to make
// tie-breaks deterministic.
type Picker interface {
	Pick(n int) int
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(n int) int

func (f PickerFunc) Pick(n int) int { return f(n) }

// RandomPicker draws from the runtime's global generator, which is safe
// for concurrent use.
type RandomPicker struct{}

func (RandomPicker) Pick(n int) int { return rand.IntN(n) }

// SeededPicker is a reproducible Picker for tests and simulations.
type SeededPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededPicker returns a Picker whose sequence is fixed by seed.
func NewSeededPicker(seed uint64) *SeededPicker {
	return &SeededPicker{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (p *SeededPicker) Pick(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(n)
}
