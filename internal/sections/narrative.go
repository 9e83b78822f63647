// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sections

import "strings"

// Narrative re-projects a validated response into the fixed section
// layout for summary output. Every canonical section is rendered in
// order, empty when the response lacks it, so downstream documents have
// a uniform structure regardless of what the model produced.
func Narrative(text string) string {
	var b strings.Builder
	b.WriteString("Use Case Template\n")
	for i := range Canonical {
		sec := &Canonical[i]
		b.WriteString("\n### ")
		b.WriteString(sec.Canonical)
		b.WriteString("\n")
		if body := Body(text, sec.Canonical); body != "" {
			b.WriteString(body)
			b.WriteString("\n")
		}
	}
	return b.String()
}
