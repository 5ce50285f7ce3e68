package generator

import (
	"math/rand/v2"
	"time"
)

// Rand is the random source used for generation. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// NewRand returns a PCG source for seed. A zero seed is replaced with the
// current time.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
