package augment

import (
	"math/rand/v2"
)

// mixStream selects the PCG stream used for mixup draws ("mixup" in ASCII).
const mixStream uint64 = 0x6d69787570

// Mix holds the random draws for one batch.
// Perm[i] is the partner of sample i; Lam[i] in [0, 1) is the weight kept
// for sample i itself.
type Mix struct {
	Perm []int
	Lam  []float64
}

// Draw reseeds a generator from seed and draws, in this order, a
// permutation of [0, n) and n weights. Every mixup operation goes through
// Draw so operations seeded alike always agree.
func Draw(seed uint64, n int) Mix {
	rng := rand.New(rand.NewPCG(seed, mixStream)) //nolint:gosec // Deterministic seed is the point.

	perm := rng.Perm(n)
	lam := make([]float64, n)
	for i := range lam {
		lam[i] = rng.Float64()
	}

	return Mix{Perm: perm, Lam: lam}
}
