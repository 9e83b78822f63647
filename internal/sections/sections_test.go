// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sections

import (
	"strings"
	"testing"

	"github.com/pdiddy/usecase-engine/pkg/types"
)

// sampleResponse is a well-formed normalized use case.
const sampleResponse = `# Post Voucher To General Ledger

## Identification
**Use Case ID:** UC-AP160-001

## Description
Posts an approved voucher to the general ledger.

## Pre-Condition
Voucher batch is approved.

## Post-Condition
GL balances reflect the voucher.

## Input Type Validation Checks
Vendor number must exist.

## Entities Used / Tables Used
APVOUCH, GLMAST

## Process Steps
1. Read the voucher record.
2. Write the GL detail line.

## Tests Needed
Post a voucher and verify the GL balance.
`

func testValidation() types.ValidationConfig {
	return types.ValidationConfig{AcceptScore: 0.5, LowConfidenceScore: 0.25}
}

// --- Normalize ---

func TestNormalizeRewritesSynonyms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "validation rules",
			in:   "## Validation Rules\nVendor must exist.",
			want: "## Input Type Validation Checks\nVendor must exist.",
		},
		{
			name: "input validation",
			in:   "## Input Validation\nbody",
			want: "## Input Type Validation Checks\nbody",
		},
		{
			name: "tables used",
			in:   "## Tables Used\nAPVOUCH",
			want: "## Entities Used / Tables Used\nAPVOUCH",
		},
		{
			name: "entities used",
			in:   "## Entities Used\nAPVOUCH",
			want: "## Entities Used / Tables Used\nAPVOUCH",
		},
		{
			name: "program steps keeps level",
			in:   "### Program Steps\n1. Read.",
			want: "### Process Steps\n1. Read.",
		},
		{
			name: "trailing colon",
			in:   "## Pre-Conditions:\nBatch approved.",
			want: "## Pre-Condition\nBatch approved.",
		},
		{
			name: "unknown heading untouched",
			in:   "## Random Notes\nbody",
			want: "## Random Notes\nbody",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		sampleResponse,
		"## Validation Rules\nbody\n## Tables Used\nmore",
		"no headings at all",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q", in)
		}
	}
}

func TestNormalizeLeavesBodyAlone(t *testing.T) {
	in := "## Validation Rules\nThe phrase Tables Used appears in a body line.\nAnd Entities Used too."
	got := Normalize(in)
	if !strings.Contains(got, "The phrase Tables Used appears in a body line.") {
		t.Error("body line was rewritten")
	}
}

// --- StampModuleCode ---

func TestStampModuleCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare numeric id",
			in:   "**Use Case ID:** UC-007",
			want: "**Use Case ID:** UC-AP160-007",
		},
		{
			name: "letters-only prefix",
			in:   "**Use Case ID:** UC-AP-007",
			want: "**Use Case ID:** UC-AP160-007",
		},
		{
			name: "already stamped",
			in:   "**Use Case ID:** UC-AP160-007",
			want: "**Use Case ID:** UC-AP160-007",
		},
		{
			name: "no id present",
			in:   "## Description\nNothing here.",
			want: "## Description\nNothing here.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StampModuleCode(tt.in, "AP160")
			if got != tt.want {
				t.Errorf("StampModuleCode = %q, want %q", got, tt.want)
			}
			if again := StampModuleCode(got, "AP160"); again != got {
				t.Errorf("StampModuleCode not idempotent: %q -> %q", got, again)
			}
		})
	}
}

// --- Score ---

func TestScoreAccepted(t *testing.T) {
	cat, score := Score(sampleResponse, testValidation())
	if cat != types.Accepted {
		t.Fatalf("category = %s (score %v), want accepted", cat, score)
	}
	// All eight sections with content plus the title.
	want := 8*0.10 + 8*0.05 + 0.10
	if score < want-1e-9 || score > want+1e-9 {
		t.Errorf("score = %v, want %v", score, want)
	}
}

func TestScoreLowConfidence(t *testing.T) {
	partial := "## Description\nPosts a voucher.\n\n## Process Steps\n1. Read.\n"
	cat, score := Score(partial, testValidation())
	if cat != types.LowConfidence {
		t.Errorf("category = %s (score %v), want low-confidence", cat, score)
	}
}

func TestScoreFailedParse(t *testing.T) {
	cat, _ := Score("The model rambles with no structure whatsoever.", testValidation())
	if cat != types.FailedParse {
		t.Errorf("category = %s, want failed-parse", cat)
	}
}

func TestScoreEmptyIsFailed(t *testing.T) {
	for _, in := range []string{"", "   \n\t\n"} {
		cat, score := Score(in, testValidation())
		if cat != types.Failed || score != 0 {
			t.Errorf("Score(%q) = %s/%v, want failed/0", in, cat, score)
		}
	}
}

func TestScoreDeterministic(t *testing.T) {
	cfg := testValidation()
	cat1, s1 := Score(sampleResponse, cfg)
	for i := 0; i < 10; i++ {
		cat, s := Score(sampleResponse, cfg)
		if cat != cat1 || s != s1 {
			t.Fatalf("run %d: %s/%v, first run %s/%v", i, cat, s, cat1, s1)
		}
	}
}

func TestScoreEmptySectionGetsNoContentBonus(t *testing.T) {
	withBody := "## Description\nA real description here.\n"
	withoutBody := "## Description\n\n"
	_, sWith := Score(withBody, testValidation())
	_, sWithout := Score(withoutBody, testValidation())
	if sWith <= sWithout {
		t.Errorf("content bonus missing: with=%v without=%v", sWith, sWithout)
	}
}

// --- Body / Narrative ---

func TestBody(t *testing.T) {
	got := Body(sampleResponse, "Process Steps")
	want := "1. Read the voucher record.\n2. Write the GL detail line."
	if got != want {
		t.Errorf("Body = %q, want %q", got, want)
	}

	if got := Body(sampleResponse, "No Such Section"); got != "" {
		t.Errorf("Body for unknown section = %q, want empty", got)
	}
}

func TestNarrativeRendersAllSections(t *testing.T) {
	got := Narrative("## Description\nOnly a description.\n")

	for i := range Canonical {
		if !strings.Contains(got, "### "+Canonical[i].Canonical) {
			t.Errorf("narrative missing section %q", Canonical[i].Canonical)
		}
	}
	if !strings.Contains(got, "Only a description.") {
		t.Error("narrative dropped the description body")
	}

	// Sections must appear in canonical order.
	last := -1
	for i := range Canonical {
		idx := strings.Index(got, "### "+Canonical[i].Canonical)
		if idx < last {
			t.Errorf("section %q out of order", Canonical[i].Canonical)
		}
		last = idx
	}
}
