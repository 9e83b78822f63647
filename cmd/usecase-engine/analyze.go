// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/usecase-engine/internal/model"
	"github.com/pdiddy/usecase-engine/internal/pipeline"
	"github.com/pdiddy/usecase-engine/pkg/types"
)

const (
	defaultChunkSize    = 90
	defaultChunkOverlap = 30
	defaultTimeout      = 120 * time.Second
	defaultRetries      = 1
	defaultRetryDelay   = 2 * time.Second
	defaultPrimaryModel = "mistral:7b-instruct"
	defaultTemplate     = "templates/use_case_template.md"
	defaultOutputDir    = "output"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [source files...]",
	Short: "Extract use cases from one or more source listings",
	Long: `Analyze runs the extraction pipeline over legacy source listings. Each
listing is windowed into overlapping chunks; every chunk is sent to the
primary model (with retries, then the fallback model), and replies are
normalized, scored against the expected section layout, and categorized.
Accepted results are deduplicated and written as individual Markdown
documents plus a run summary.

The program code is taken from the listing filename (AP160.rpg36.txt ->
AP160) and stamped into every use-case identifier.

With --batch, listings come from the "sources" list in the config file in
addition to any arguments; a listing that cannot be read is skipped rather
than aborting the batch.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().Int("chunk-size", defaultChunkSize, "window size in lines")
	analyzeCmd.Flags().Int("chunk-overlap", defaultChunkOverlap, "lines shared between consecutive windows")
	analyzeCmd.Flags().String("tail", string(types.TailStrict), "short-tail policy: strict (drop) or permissive (keep)")
	analyzeCmd.Flags().String("backend", string(types.BackendExec), "model backend: exec (ollama binary) or http (ollama server)")
	analyzeCmd.Flags().String("primary-model", defaultPrimaryModel, "model tried first for every chunk")
	analyzeCmd.Flags().String("fallback-model", "", "model tried when the primary produces nothing (empty disables)")
	analyzeCmd.Flags().Duration("timeout", defaultTimeout, "per-call generation timeout")
	analyzeCmd.Flags().Int("retries", defaultRetries, "additional attempts per model")
	analyzeCmd.Flags().Duration("retry-delay", defaultRetryDelay, "pause between attempts to the same model")
	analyzeCmd.Flags().String("host", "", "ollama server address for the http backend (default http://localhost:11434)")
	analyzeCmd.Flags().Float64("accept-score", 0.5, "minimum weighted score for acceptance")
	analyzeCmd.Flags().Float64("low-confidence-score", 0.25, "minimum score for the low-confidence tier")
	analyzeCmd.Flags().Float64("fuzzy-threshold", 0.94, "similarity ratio above which results are duplicates")
	analyzeCmd.Flags().String("template", defaultTemplate, "prompt template file")
	analyzeCmd.Flags().String("context-file", "", "listing appended to every prompt as reference context")
	analyzeCmd.Flags().String("output-dir", defaultOutputDir, "base directory for run output")
	analyzeCmd.Flags().Int("workers", 1, "chunk worker pool size")
	analyzeCmd.Flags().Bool("batch", false, "process the configured sources list")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := analyzeConfigFromFlags(cmd)

	batch, _ := cmd.Flags().GetBool("batch")
	sources := args
	if batch {
		sources = append(viper.GetStringSlice("sources"), args...)
	}
	if len(sources) == 0 {
		if batch {
			return fmt.Errorf(`no sources configured: set "sources" in the config file or pass files as arguments`)
		}
		return fmt.Errorf("provide one or more source listings to analyze")
	}
	cfg.Sources = sources

	backend, err := newBackend(cfg.Model)
	if err != nil {
		return err
	}

	summary, err := pipeline.AnalyzeAll(context.Background(), backend, cfg, sources, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d listing(s) could not be processed", summary.Failed)
	}
	return nil
}

func analyzeConfigFromFlags(cmd *cobra.Command) types.AnalyzeConfig {
	chunkSize, _ := cmd.Flags().GetInt("chunk-size")
	chunkOverlap, _ := cmd.Flags().GetInt("chunk-overlap")
	tail, _ := cmd.Flags().GetString("tail")
	backend, _ := cmd.Flags().GetString("backend")
	primary, _ := cmd.Flags().GetString("primary-model")
	fallback, _ := cmd.Flags().GetString("fallback-model")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	retries, _ := cmd.Flags().GetInt("retries")
	retryDelay, _ := cmd.Flags().GetDuration("retry-delay")
	host, _ := cmd.Flags().GetString("host")
	acceptScore, _ := cmd.Flags().GetFloat64("accept-score")
	lowConfScore, _ := cmd.Flags().GetFloat64("low-confidence-score")
	fuzzyThreshold, _ := cmd.Flags().GetFloat64("fuzzy-threshold")
	template, _ := cmd.Flags().GetString("template")
	contextFile, _ := cmd.Flags().GetString("context-file")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	workers, _ := cmd.Flags().GetInt("workers")

	return types.AnalyzeConfig{
		Chunk: types.ChunkConfig{
			Size:    chunkSize,
			Overlap: chunkOverlap,
			Tail:    types.TailPolicy(tail),
		},
		Model: types.ModelConfig{
			Backend:    types.ModelBackendKind(backend),
			Primary:    primary,
			Fallback:   fallback,
			Timeout:    timeout,
			Retries:    retries,
			RetryDelay: retryDelay,
			Host:       host,
		},
		Validation: types.ValidationConfig{
			AcceptScore:        acceptScore,
			LowConfidenceScore: lowConfScore,
		},
		FuzzyThreshold: fuzzyThreshold,
		TemplateFile:   template,
		ContextFile:    contextFile,
		OutputDir:      outputDir,
		Workers:        workers,
	}
}

func newBackend(cfg types.ModelConfig) (model.Backend, error) {
	switch cfg.Backend {
	case types.BackendHTTP:
		return &model.HTTPBackend{Host: cfg.Host, Timeout: cfg.Timeout}, nil
	case types.BackendExec, "":
		return model.NewExecBackend(cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown model backend %q: use exec or http", cfg.Backend)
	}
}
