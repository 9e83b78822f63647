// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sections

import (
	"regexp"
	"strings"
)

// bareIDPattern matches a use-case identifier that lacks a module code:
// "UC-007" or "UC-AP-007". A stamped identifier like "UC-AP160-007"
// does not match because its middle token mixes letters and digits.
var bareIDPattern = regexp.MustCompile(`UC-(?:[A-Za-z]+-)?(\d+)\b`)

// Normalize rewrites known-synonym section headers to their canonical
// spelling. Only heading lines change; body text passes through
// untouched. Normalizing already-normalized text is a no-op.
func Normalize(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !isHeading(trimmed) {
			continue
		}
		sec := canonicalFor(trimmed)
		if sec == nil {
			continue
		}
		level := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
		lines[i] = strings.Repeat("#", level) + " " + sec.Canonical
	}
	return strings.Join(lines, "\n")
}

// StampModuleCode injects the module code into bare use-case
// identifiers so IDs are unique across programs: "UC-007" becomes
// "UC-AP160-007". Already-stamped identifiers are left alone, so the
// rewrite is idempotent.
func StampModuleCode(text, moduleCode string) string {
	if moduleCode == "" {
		return text
	}
	return bareIDPattern.ReplaceAllString(text, "UC-"+moduleCode+"-$1")
}
