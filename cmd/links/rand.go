package main

import "math/rand"

// rngFor returns the source of the random input batch, or nil (the global
// source) when seed is 0. It is offset from the weight seed.
func rngFor(seed int64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	return rand.New(rand.NewSource(seed + 1)) //nolint:gosec // sample inputs, not crypto
}
