// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedupe

import (
	"reflect"
	"strings"
	"testing"
)

const threshold = 0.94

func TestRatioBounds(t *testing.T) {
	if got := Ratio("same text", "same text"); got != 1.0 {
		t.Errorf("Ratio of identical texts = %v, want 1.0", got)
	}
	if got := Ratio("aaaa", "zzzz"); got != 0.0 {
		t.Errorf("Ratio of disjoint texts = %v, want 0.0", got)
	}
	near := Ratio("Post voucher to ledger", "Post voucher to ledger.")
	if near <= 0.9 || near >= 1.0 {
		t.Errorf("Ratio of near-twins = %v, want in (0.9, 1.0)", near)
	}
}

func TestTextsKeepsFirstSeen(t *testing.T) {
	base := strings.Repeat("Posts the approved voucher batch to the general ledger. ", 5)
	twin := base + " "

	got := Texts([]string{base, twin, "a completely different use case"}, threshold)
	if len(got) != 2 {
		t.Fatalf("kept %d items, want 2", len(got))
	}
	if got[0] != base {
		t.Error("first-seen item did not survive")
	}
}

func TestTextsAllDistinctSurvive(t *testing.T) {
	items := []string{
		"Post voucher to general ledger",
		"Print 1099 forms for vendors",
		"Void a vendor check and reopen the voucher",
	}
	got := Texts(items, threshold)
	if !reflect.DeepEqual(got, items) {
		t.Errorf("distinct items altered: %v", got)
	}
}

func TestTextsIdempotent(t *testing.T) {
	base := strings.Repeat("Validates vendor invoices before payment selection. ", 4)
	items := []string{base, base + " ", "something else entirely", base + "  "}

	once := Texts(items, threshold)
	twice := Texts(once, threshold)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("dedupe of deduped set changed: %v vs %v", once, twice)
	}
}

func TestTextsOrderDependence(t *testing.T) {
	base := strings.Repeat("Selects vouchers due for payment this cycle. ", 5)
	twin := base + " "

	forward := Texts([]string{base, twin}, threshold)
	reverse := Texts([]string{twin, base}, threshold)

	if len(forward) != 1 || len(reverse) != 1 {
		t.Fatalf("kept %d/%d items, want 1/1", len(forward), len(reverse))
	}
	if forward[0] != base || reverse[0] != twin {
		t.Error("survivor is not the first-seen item")
	}
}

func TestByPreservesCarrier(t *testing.T) {
	type result struct {
		idx  int
		text string
	}
	base := strings.Repeat("Releases held invoices after approval. ", 5)
	items := []result{
		{0, base},
		{1, base + " "},
		{2, "unrelated content"},
	}

	got := By(items, func(r result) string { return r.text }, threshold)
	if len(got) != 2 {
		t.Fatalf("kept %d items, want 2", len(got))
	}
	if got[0].idx != 0 || got[1].idx != 2 {
		t.Errorf("kept indices %d,%d, want 0,2", got[0].idx, got[1].idx)
	}
}
