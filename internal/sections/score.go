// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sections

import (
	"strings"

	"github.com/pdiddy/usecase-engine/pkg/types"
)

// Score rates how much of the expected use-case structure a normalized
// response carries. Each canonical section present adds its weight; a
// non-trivial body under it adds a content bonus; an opening title line
// adds a title bonus. The category is a pure function of the text and
// the configured thresholds, independent of processing order.
//
// Empty text is always Failed: a response that never arrived cannot be
// low-confidence.
func Score(text string, cfg types.ValidationConfig) (types.Category, float64) {
	if strings.TrimSpace(text) == "" {
		return types.Failed, 0
	}

	score := 0.0
	if hasTitle(text) {
		score += titleBonus
	}

	present := presentSections(text)
	for i := range Canonical {
		sec := &Canonical[i]
		if !present[sec.Canonical] {
			continue
		}
		score += sec.Weight
		if len(strings.TrimSpace(Body(text, sec.Canonical))) >= minBodyLen {
			score += contentBonus
		}
	}

	switch {
	case score >= cfg.AcceptScore:
		return types.Accepted, score
	case score >= cfg.LowConfidenceScore:
		return types.LowConfidence, score
	default:
		return types.FailedParse, score
	}
}

// presentSections maps canonical names to whether a heading for them
// (canonical or synonym) appears anywhere in the text.
func presentSections(text string) map[string]bool {
	present := make(map[string]bool, len(Canonical))
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if !isHeading(trimmed) {
			continue
		}
		if sec := canonicalFor(trimmed); sec != nil {
			present[sec.Canonical] = true
		}
	}
	return present
}

// hasTitle reports whether the first non-blank line is a top-level
// Markdown heading or a bold title, the two title shapes the model
// produces.
func hasTitle(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "# ") {
			return true
		}
		return strings.HasPrefix(trimmed, "**") && strings.HasSuffix(trimmed, "**") && len(trimmed) > 4
	}
	return false
}
