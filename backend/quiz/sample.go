package quiz

import "math/rand"

// Sample draws min(k, len(pool)) distinct elements of pool in random order.
// The pool itself is left untouched.
func Sample[T any](pool []T, k int, rnd *rand.Rand) []T {
	if k <= 0 || len(pool) == 0 {
		return []T{}
	}
	out := make([]T, len(pool))
	copy(out, pool)
	rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	if k < len(out) {
		out = out[:k]
	}
	return out
}
