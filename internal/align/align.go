// Package align pairs passes across two pipelines using a name-equivalence
// mapping while preserving each pipeline's execution order.
package align

import (
	"sort"

	"irdiverge/internal/irdump"
)

// Pair links one pipeline-A pass to its pipeline-B counterpart.
type Pair struct {
	A irdump.PassRecord
	B irdump.PassRecord
}

// Result of an alignment run. Unmatched holds every A record that produced no
// pair, in original pipeline order. DuplicateTargets lists B names that more
// than one A name maps to; duplicates are a warning, not an error.
type Result struct {
	Pairs            []Pair
	Unmatched        []irdump.PassRecord
	Excluded         []string
	DuplicateTargets []string
}

// Align computes a monotonic, non-reusing partial matching between the two
// ordered pipelines. For each A pass in order it selects the earliest B pass
// whose name equals the mapped target, whose index is strictly greater than
// the previously consumed B index, and which has not been consumed yet.
//
// The greedy earliest-available rule is intentional: both pipelines are
// internally ordered, so a valid correspondence can never step backwards in B.
// With repeated target names and gaps the result is well-defined but not
// globally optimal.
func Align(a, b []irdump.PassRecord, mapping map[string]string, excludeA, excludeB map[string]struct{}) Result {
	res := Result{
		DuplicateTargets: duplicateTargets(mapping),
	}

	lastB := -1
	consumed := make(map[int]struct{})

	for _, rec := range a {
		if _, skip := excludeA[rec.Name]; skip {
			res.Excluded = append(res.Excluded, rec.Name)
			res.Unmatched = append(res.Unmatched, rec)
			continue
		}

		target, ok := mapping[rec.Name]
		if !ok || target == "" {
			res.Unmatched = append(res.Unmatched, rec)
			continue
		}

		if _, skip := excludeB[target]; skip {
			res.Excluded = append(res.Excluded, rec.Name+" -> "+target)
			res.Unmatched = append(res.Unmatched, rec)
			continue
		}

		match, found := earliestAvailable(b, target, consumed, lastB)
		if !found {
			res.Unmatched = append(res.Unmatched, rec)
			continue
		}

		res.Pairs = append(res.Pairs, Pair{A: rec, B: match})
		consumed[match.Index] = struct{}{}
		lastB = match.Index
	}

	return res
}

func earliestAvailable(b []irdump.PassRecord, name string, consumed map[int]struct{}, lastB int) (irdump.PassRecord, bool) {
	for _, rec := range b {
		if rec.Index <= lastB || rec.Name != name {
			continue
		}
		if _, used := consumed[rec.Index]; used {
			continue
		}
		return rec, true
	}
	return irdump.PassRecord{}, false
}

func duplicateTargets(mapping map[string]string) []string {
	counts := make(map[string]int, len(mapping))
	for _, target := range mapping {
		counts[target]++
	}

	var dups []string
	for target, n := range counts {
		if n > 1 {
			dups = append(dups, target)
		}
	}
	sort.Strings(dups)
	return dups
}
