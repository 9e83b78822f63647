// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedupe removes near-duplicate results by string similarity.
package dedupe

import (
	"github.com/agext/levenshtein"
)

// simParams holds the default similarity parameters; Similarity with
// these yields a normalized edit-distance ratio in [0,1].
var simParams = levenshtein.NewParams()

// Ratio returns the symmetric similarity of two texts in [0,1].
func Ratio(a, b string) float64 {
	return levenshtein.Similarity(a, b, simParams)
}

// Texts filters items in order, dropping any whose similarity to an
// already-kept item exceeds threshold. First seen wins, so the result
// depends on input order; callers that care about which near-duplicate
// survives must order the input accordingly. Comparing each candidate
// against kept items only keeps the pass O(kept x n); result counts are
// small enough per run that no pre-filtering is needed.
func Texts(items []string, threshold float64) []string {
	kept := make([]string, 0, len(items))
	for _, item := range items {
		if !similarToAny(item, kept, threshold) {
			kept = append(kept, item)
		}
	}
	return kept
}

// By is the generic form of Texts for result types that carry their
// comparison text alongside other fields.
func By[T any](items []T, text func(T) string, threshold float64) []T {
	kept := make([]T, 0, len(items))
	keptText := make([]string, 0, len(items))
	for _, item := range items {
		t := text(item)
		if !similarToAny(t, keptText, threshold) {
			kept = append(kept, item)
			keptText = append(keptText, t)
		}
	}
	return kept
}

func similarToAny(candidate string, kept []string, threshold float64) bool {
	for _, k := range kept {
		if Ratio(candidate, k) > threshold {
			return true
		}
	}
	return false
}
