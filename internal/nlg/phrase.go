package nlg

import (
	"math/rand/v2"
	"sync"
	"time"
)

// PhrasePicker chooses one of several equivalent phrasings.
type PhrasePicker interface {
	Pick(options []string) string
}

// RandomPicker picks uniformly. It is safe for concurrent use.
type RandomPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomPicker(seed uint64) *RandomPicker {
	return &RandomPicker{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewTimeSeededPicker seeds from the clock.
func NewTimeSeededPicker() *RandomPicker {
	return NewRandomPicker(uint64(time.Now().UnixNano()))
}

func (p *RandomPicker) Pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	p.mu.Lock()
	i := p.rng.IntN(len(options))
	p.mu.Unlock()
	return options[i]
}

// FirstPicker always picks the first option.
type FirstPicker struct{}

func (FirstPicker) Pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[0]
}
