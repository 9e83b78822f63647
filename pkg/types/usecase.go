// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Category is the outcome of validating one model response.
type Category string

const (
	// Accepted means the response carries enough of the expected section
	// structure to stand as a use-case document.
	Accepted Category = "accepted"

	// LowConfidence means the response has some structure but falls short
	// of the acceptance score; it is routed to a review directory.
	LowConfidence Category = "low-confidence"

	// FailedParse means the response text contains none of the expected
	// structure worth keeping.
	FailedParse Category = "failed-parse"

	// Failed means no response text was produced at all (both models
	// timed out or errored).
	Failed Category = "failed"
)

// Usable reports whether the category carries response text worth writing.
func (c Category) Usable() bool {
	return c == Accepted || c == LowConfidence
}

// UseCase is one accepted result with its derived identity.
type UseCase struct {
	// ID is the use-case identifier, e.g. "UC-AP160-007".
	ID string `json:"id" yaml:"id"`

	// Title is the document title taken from the response text.
	Title string `json:"title" yaml:"title"`

	// FileName is the filesystem-safe artifact name, without extension.
	FileName string `json:"file_name" yaml:"file_name"`

	// ModuleCode is the legacy program code, e.g. "AP160".
	ModuleCode string `json:"module_code" yaml:"module_code"`

	// ChunkIndex is the zero-based index of the source chunk.
	ChunkIndex int `json:"chunk_index" yaml:"chunk_index"`

	// Score is the weighted validation score.
	Score float64 `json:"score" yaml:"score"`

	// Text is the normalized response text.
	Text string `json:"-" yaml:"-"`
}

// RunSummary holds the per-category counts for one analysis run.
type RunSummary struct {
	Accepted      int `json:"accepted" yaml:"accepted"`
	LowConfidence int `json:"low_confidence" yaml:"low_confidence"`
	Failed        int `json:"failed" yaml:"failed"`
}

// Total returns the number of chunks processed.
func (s RunSummary) Total() int {
	return s.Accepted + s.LowConfidence + s.Failed
}

// HasFailures reports whether any chunk produced no usable output.
func (s RunSummary) HasFailures() bool {
	return s.Failed > 0
}

// RunManifest is the run.yaml record written into each run directory.
type RunManifest struct {
	SourceFile string        `json:"source_file" yaml:"source_file"`
	ModuleCode string        `json:"module_code" yaml:"module_code"`
	StartedAt  time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time     `json:"finished_at" yaml:"finished_at"`
	Chunks     int           `json:"chunks" yaml:"chunks"`
	Unique     int           `json:"unique" yaml:"unique"`
	Summary    RunSummary    `json:"summary" yaml:"summary"`
	Config     AnalyzeConfig `json:"config" yaml:"config"`
}
