package testhelpers

import "sync"

// ScriptedRandom replays fixed draws. IntN returns the next scripted integer
// modulo n and Float64 the next scripted float; running out of script panics
// so that tests notice unexpected draws.
type ScriptedRandom struct {
	mu     sync.Mutex
	Ints   []int
	Floats []float64
}

// NewScriptedRandom creates a source that replays ints
func NewScriptedRandom(ints ...int) *ScriptedRandom {
	return &ScriptedRandom{Ints: ints}
}

func (r *ScriptedRandom) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Ints) == 0 {
		panic("scripted random: no integer draws left")
	}
	v := r.Ints[0]
	r.Ints = r.Ints[1:]
	return v % n
}

func (r *ScriptedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Floats) == 0 {
		panic("scripted random: no float draws left")
	}
	v := r.Floats[0]
	r.Floats = r.Floats[1:]
	return v
}

// Shuffle leaves the order untouched so card tests control the shoe
func (r *ScriptedRandom) Shuffle(n int, swap func(i, j int)) {}
