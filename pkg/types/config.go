// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// TailPolicy controls what happens to a trailing window shorter than the
// chunk size.
type TailPolicy string

const (
	// TailStrict drops a trailing window shorter than the chunk size.
	TailStrict TailPolicy = "strict"

	// TailPermissive keeps the final short window.
	TailPermissive TailPolicy = "permissive"
)

// ModelBackendKind selects how the local model is invoked.
type ModelBackendKind string

const (
	// BackendExec shells out to the ollama binary, prompt on stdin.
	BackendExec ModelBackendKind = "exec"

	// BackendHTTP posts to a local ollama server's generate endpoint.
	BackendHTTP ModelBackendKind = "http"
)

// ChunkConfig holds the line-windowing settings.
type ChunkConfig struct {
	// Size is the window size in lines (default 90).
	Size int `json:"size" yaml:"size"`

	// Overlap is the number of lines shared between consecutive windows
	// (default 30). Must be smaller than Size.
	Overlap int `json:"overlap" yaml:"overlap"`

	// Tail selects strict (drop short tail) or permissive (keep it).
	Tail TailPolicy `json:"tail" yaml:"tail"`
}

// ModelConfig holds settings for invoking the local generation model.
type ModelConfig struct {
	// Backend selects the invocation mechanism: exec or http.
	Backend ModelBackendKind `json:"backend" yaml:"backend"`

	// Primary is the model tried first for every chunk
	// (e.g. "mistral:7b-instruct").
	Primary string `json:"primary" yaml:"primary"`

	// Fallback is tried when the primary produces nothing. Empty disables
	// the fallback.
	Fallback string `json:"fallback,omitempty" yaml:"fallback,omitempty"`

	// Timeout bounds a single generation call. A timed-out call is an
	// absent response, not an error.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Retries is the number of additional attempts per model (default 1).
	Retries int `json:"retries" yaml:"retries"`

	// RetryDelay is the fixed pause between attempts to the same model.
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay"`

	// Host is the server address for the http backend
	// (default "http://localhost:11434").
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
}

// ValidationConfig holds the acceptance thresholds for scored responses.
type ValidationConfig struct {
	// AcceptScore is the minimum weighted score for an accepted result
	// (default 0.5).
	AcceptScore float64 `json:"accept_score" yaml:"accept_score"`

	// LowConfidenceScore is the minimum score for a low-confidence result
	// (default 0.25). Below it a response is failed-to-parse.
	LowConfidenceScore float64 `json:"low_confidence_score" yaml:"low_confidence_score"`
}

// AnalyzeConfig groups every setting for one analysis run. It is built
// once, validated before any processing, and passed by value; no
// component mutates it.
type AnalyzeConfig struct {
	Chunk      ChunkConfig      `json:"chunk" yaml:"chunk"`
	Model      ModelConfig      `json:"model" yaml:"model"`
	Validation ValidationConfig `json:"validation" yaml:"validation"`

	// FuzzyThreshold is the similarity ratio above which two accepted
	// results are considered duplicates (default 0.94).
	FuzzyThreshold float64 `json:"fuzzy_threshold" yaml:"fuzzy_threshold"`

	// TemplateFile is the prompt template path. Required.
	TemplateFile string `json:"template_file" yaml:"template_file"`

	// ContextFile optionally names a listing whose text is appended to
	// every prompt as reference context.
	ContextFile string `json:"context_file,omitempty" yaml:"context_file,omitempty"`

	// OutputDir is the base directory for run output trees.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Workers bounds the chunk worker pool. The model server is
	// effectively a serialized resource, so the default is 1.
	Workers int `json:"workers" yaml:"workers"`

	// Sources lists the files processed in batch mode.
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// Validate checks the settings that would otherwise fail mid-run.
// A non-positive chunk stride is an infinite-loop hazard, so it is
// rejected here rather than in the chunker loop.
func (c AnalyzeConfig) Validate() error {
	if c.Chunk.Size <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.Chunk.Size)
	}
	if c.Chunk.Overlap < 0 {
		return fmt.Errorf("chunk overlap must not be negative, got %d", c.Chunk.Overlap)
	}
	if c.Chunk.Overlap >= c.Chunk.Size {
		return fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", c.Chunk.Overlap, c.Chunk.Size)
	}
	switch c.Chunk.Tail {
	case TailStrict, TailPermissive:
	default:
		return fmt.Errorf("unknown tail policy %q: use strict or permissive", c.Chunk.Tail)
	}
	switch c.Model.Backend {
	case BackendExec, BackendHTTP:
	default:
		return fmt.Errorf("unknown model backend %q: use exec or http", c.Model.Backend)
	}
	if c.Model.Primary == "" {
		return fmt.Errorf("primary model is required")
	}
	if c.Model.Timeout <= 0 {
		return fmt.Errorf("model timeout must be positive, got %v", c.Model.Timeout)
	}
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 1 {
		return fmt.Errorf("fuzzy threshold %v out of range [0,1]", c.FuzzyThreshold)
	}
	if c.Validation.AcceptScore < c.Validation.LowConfidenceScore {
		return fmt.Errorf("accept score %v must not be below low-confidence score %v",
			c.Validation.AcceptScore, c.Validation.LowConfidenceScore)
	}
	if c.TemplateFile == "" {
		return fmt.Errorf("prompt template file is required")
	}
	return nil
}

// IndexConfig holds settings for the use-case index commands.
type IndexConfig struct {
	// IndexDir is the directory holding the SQLite index (default "index").
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
