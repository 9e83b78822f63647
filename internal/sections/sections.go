// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sections defines the canonical use-case section layout and the
// operations over it: header normalization, structure scoring, and
// narrative re-projection. All three consume the same declarative table,
// so the recognized synonym spellings can never drift apart.
package sections

import (
	"strings"
)

// Section is one canonical heading with its recognized synonym
// spellings and its contribution to the acceptance score.
type Section struct {
	// Canonical is the single preferred heading spelling.
	Canonical string

	// Synonyms lists alternate spellings the model is known to emit.
	Synonyms []string

	// Weight is added to the score when the section is present.
	Weight float64
}

// contentBonus is added per section whose body is non-trivial.
const contentBonus = 0.05

// titleBonus is added when the response opens with a title line.
const titleBonus = 0.10

// minBodyLen is the shortest body that counts as non-trivial content.
const minBodyLen = 6

// Canonical is the fixed, ordered section layout of a use-case
// document. Order matters: the narrative formatter renders sections in
// this sequence.
var Canonical = []Section{
	{Canonical: "Identification", Synonyms: []string{"Identification Block"}, Weight: 0.10},
	{Canonical: "Description", Weight: 0.10},
	{Canonical: "Pre-Condition", Synonyms: []string{"Preconditions", "Pre-Conditions"}, Weight: 0.10},
	{Canonical: "Post-Condition", Synonyms: []string{"Postconditions", "Post-Conditions"}, Weight: 0.10},
	{Canonical: "Input Type Validation Checks", Synonyms: []string{"Input Validation", "Validation Rules"}, Weight: 0.10},
	{Canonical: "Entities Used / Tables Used", Synonyms: []string{"Entities Used", "Tables Used"}, Weight: 0.10},
	{Canonical: "Process Steps", Synonyms: []string{"Program Steps", "Processing Steps"}, Weight: 0.10},
	{Canonical: "Tests Needed", Synonyms: []string{"Test Cases"}, Weight: 0.10},
}

// lookup maps every lowercased spelling (canonical and synonym) to its
// canonical section.
var lookup = func() map[string]*Section {
	m := make(map[string]*Section)
	for i := range Canonical {
		sec := &Canonical[i]
		m[strings.ToLower(sec.Canonical)] = sec
		for _, syn := range sec.Synonyms {
			m[strings.ToLower(syn)] = sec
		}
	}
	return m
}()

// isHeading reports whether a trimmed line is a Markdown heading.
func isHeading(line string) bool {
	return strings.HasPrefix(line, "#")
}

// headingText strips the # prefix, surrounding whitespace, and a
// trailing colon from a heading line.
func headingText(line string) string {
	text := strings.TrimSpace(strings.TrimLeft(line, "#"))
	return strings.TrimSuffix(text, ":")
}

// canonicalFor resolves a heading line to its canonical section, or nil
// when the heading is not part of the use-case layout.
func canonicalFor(line string) *Section {
	return lookup[strings.ToLower(headingText(line))]
}

// Body returns the text under the named canonical section: everything
// between its heading line and the next heading (any level). The text
// should already be normalized; synonym headings are still recognized.
func Body(text, canonical string) string {
	var capturing bool
	var body []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if isHeading(trimmed) {
			if capturing {
				break
			}
			if sec := canonicalFor(trimmed); sec != nil && sec.Canonical == canonical {
				capturing = true
			}
			continue
		}
		if capturing {
			body = append(body, line)
		}
	}
	return strings.TrimSpace(strings.Join(body, "\n"))
}
