// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package usecase derives a stable identifier, a short title, and a
// filesystem-safe artifact name for an accepted model response.
package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/usecase-engine/internal/sections"
)

// maxTitleLen caps the title part of the artifact name.
const maxTitleLen = 75

// seqWidth is the zero-pad width for synthesized sequence numbers.
const seqWidth = 3

// explicitIDPattern matches a stamped identifier in the response text,
// e.g. "UC-AP160-007". The digits after the final hyphen are the
// sequence number.
var explicitIDPattern = regexp.MustCompile(`UC-[A-Za-z0-9]+-(\d+)\b`)

// headingPattern matches the first top-level Markdown heading.
var headingPattern = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// boldTitlePattern matches a bold title line, the other title shape the
// model produces.
var boldTitlePattern = regexp.MustCompile(`(?m)^\*\*([^*]+)\*\*\s*$`)

// unsafeChars matches everything outside the artifact-name alphabet.
var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9\- ]+`)

// hyphenRuns collapses repeated hyphens.
var hyphenRuns = regexp.MustCompile(`-+`)

// Identity is the derived identity of one accepted result.
type Identity struct {
	// ID is the use-case identifier, e.g. "UC-AP160-007".
	ID string

	// Title is the human-readable document title.
	Title string

	// FileName is "<ID>-<safe title>", suitable as an artifact base name.
	FileName string
}

// Extract derives the identity from a response. An identifier already
// present in the text wins; otherwise one is synthesized from the
// module code and the caller's monotonically increasing counter. The
// title falls back from the first heading to the first sentence of the
// description to a fixed placeholder.
func Extract(text, moduleCode string, seq int) Identity {
	id := explicitID(text)
	if id == "" {
		id = fmt.Sprintf("UC-%s-%0*d", moduleCode, seqWidth, seq)
	}

	title := extractTitle(text)

	return Identity{
		ID:       id,
		Title:    title,
		FileName: id + "-" + SafeName(title),
	}
}

// explicitID returns a stamped identifier found in the text, or empty.
func explicitID(text string) string {
	return explicitIDPattern.FindString(text)
}

// extractTitle walks the fallback chain: heading, bold title, first
// sentence of the description, placeholder.
func extractTitle(text string) string {
	if m := headingPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := boldTitlePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if desc := sections.Body(text, "Description"); desc != "" {
		return firstSentence(desc)
	}
	return "Untitled"
}

// firstSentence returns the text up to the first period, or the first
// line when no period ends a sentence.
func firstSentence(text string) string {
	line := strings.TrimSpace(strings.SplitN(text, "\n", 2)[0])
	if i := strings.Index(line, ". "); i >= 0 {
		return line[:i]
	}
	return strings.TrimSuffix(line, ".")
}

// SafeName reduces a title to the artifact-name alphabet: strip
// everything outside [A-Za-z0-9- ], turn whitespace runs into single
// hyphens, collapse repeated hyphens, trim boundary hyphens, and cap
// the length.
func SafeName(title string) string {
	name := unsafeChars.ReplaceAllString(title, "")
	name = strings.Join(strings.Fields(name), "-")
	name = hyphenRuns.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if len(name) > maxTitleLen {
		name = strings.Trim(name[:maxTitleLen], "-")
	}
	if name == "" {
		name = "Untitled"
	}
	return name
}
