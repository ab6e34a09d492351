// Package diverge walks aligned pass pairs in order and finds the first pair
// whose canonicalized content differs.
package diverge

import (
	"fmt"

	"irdiverge/internal/align"
	"irdiverge/internal/normalize"
)

// Loader reads a pass artifact back by its store handle.
type Loader interface {
	Load(path string) (string, error)
}

// Result of a first-divergence scan. When Found, NormalizedA and NormalizedB
// hold both sides' canonical text for diffing; LastCommon is nil when the
// divergent pair is the first.
type Result struct {
	Found       bool
	Index       int
	Pair        align.Pair
	LastCommon  *align.Pair
	NormalizedA string
	NormalizedB string
}

// FindFirst normalizes and compares pairs in order, stopping at the first
// mismatch. Pairs past the first mismatch are never loaded or normalized.
// A load failure aborts the scan.
func FindFirst(pairs []align.Pair, opts normalize.Options, loader Loader) (Result, error) {
	for i, pair := range pairs {
		a, err := loader.Load(pair.A.Path)
		if err != nil {
			return Result{}, fmt.Errorf("pair %d (%s): %w", i, pair.A.Name, err)
		}
		b, err := loader.Load(pair.B.Path)
		if err != nil {
			return Result{}, fmt.Errorf("pair %d (%s): %w", i, pair.B.Name, err)
		}

		normA := normalize.Normalize(a, opts)
		normB := normalize.Normalize(b, opts)
		if normA == normB {
			continue
		}

		res := Result{
			Found:       true,
			Index:       i,
			Pair:        pair,
			NormalizedA: normA,
			NormalizedB: normB,
		}
		if i > 0 {
			prev := pairs[i-1]
			res.LastCommon = &prev
		}
		return res, nil
	}

	return Result{}, nil
}
