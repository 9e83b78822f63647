// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/usecase-engine/internal/model"
	"github.com/pdiddy/usecase-engine/pkg/types"
)

// BatchSummary holds counts from a batch run over several listings.
type BatchSummary struct {
	Processed int
	Failed    int
	Runs      types.RunSummary
}

// Total returns the number of listings attempted.
func (s BatchSummary) Total() int {
	return s.Processed + s.Failed
}

// HasFailures reports whether any listing could not be processed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// AnalyzeAll processes each source listing in order. One listing's
// preflight failure (unreadable file, unrecognizable name) does not
// stop the batch; the batch itself aborts only on cancellation or an
// invalid configuration, which would fail every listing identically.
func AnalyzeAll(ctx context.Context, backend model.Backend, cfg types.AnalyzeConfig, sources []string, w io.Writer) (BatchSummary, error) {
	if err := cfg.Validate(); err != nil {
		return BatchSummary{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if len(sources) == 0 {
		return BatchSummary{}, fmt.Errorf("no source files configured for batch mode")
	}

	var summary BatchSummary
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result, err := Analyze(ctx, backend, cfg, src, w)
		if err != nil {
			fmt.Fprintf(w, "skipping %s: %v\n", src, err)
			summary.Failed++
			continue
		}
		summary.Processed++
		summary.Runs.Accepted += result.Summary.Accepted
		summary.Runs.LowConfidence += result.Summary.LowConfidence
		summary.Runs.Failed += result.Summary.Failed
	}

	fmt.Fprintf(w, "\nbatch: %d processed, %d skipped; %d accepted, %d low-confidence, %d failed chunks\n",
		summary.Processed, summary.Failed,
		summary.Runs.Accepted, summary.Runs.LowConfidence, summary.Runs.Failed)

	return summary, nil
}
