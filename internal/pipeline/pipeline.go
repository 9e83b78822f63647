// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the full analysis for a legacy source listing:
// window the lines, prompt the model per chunk, validate and categorize
// each reply, then deduplicate and summarize the accepted results.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/usecase-engine/internal/chunk"
	"github.com/pdiddy/usecase-engine/internal/dedupe"
	"github.com/pdiddy/usecase-engine/internal/model"
	"github.com/pdiddy/usecase-engine/internal/prompt"
	"github.com/pdiddy/usecase-engine/internal/sections"
	"github.com/pdiddy/usecase-engine/internal/usecase"
	"github.com/pdiddy/usecase-engine/pkg/types"
)

// moduleCodePattern extracts the program code from a listing filename:
// the leading letters+digits token, e.g. AP160 from "AP160.rpg36.txt".
var moduleCodePattern = regexp.MustCompile(`^([A-Za-z]+[0-9]+)`)

// Result holds the outcome of analyzing one source listing.
type Result struct {
	ModuleCode string
	RunDir     string
	Summary    types.RunSummary
	UseCases   []types.UseCase
	Unique     int
}

// outcome is the per-chunk slot filled by a worker. Workers share
// nothing else, so the only synchronization is the pool barrier.
type outcome struct {
	category types.Category
	score    float64
	text     string
}

// ModuleCode derives the program code from a source file path. A
// filename that carries no recognizable code is a preflight error.
func ModuleCode(path string) (string, error) {
	base := filepath.Base(path)
	m := moduleCodePattern.FindStringSubmatch(base)
	if m == nil {
		return "", fmt.Errorf("no program code in filename %q (want e.g. AP160.rpg36.txt)", base)
	}
	return strings.ToUpper(m[1]), nil
}

// Analyze processes one source listing end to end and writes the run
// artifacts. Configuration, source, and template problems abort before
// any chunk is processed; after that, per-chunk failures only count
// toward the summary.
func Analyze(ctx context.Context, backend model.Backend, cfg types.AnalyzeConfig, sourcePath string, w io.Writer) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	code, err := ModuleCode(sourcePath)
	if err != nil {
		return nil, err
	}

	lines, err := readLines(sourcePath)
	if err != nil {
		return nil, err
	}

	tmpl, err := prompt.LoadTemplate(cfg.TemplateFile)
	if err != nil {
		return nil, err
	}

	contextText := ""
	if cfg.ContextFile != "" {
		ctxLines, err := readLines(cfg.ContextFile)
		if err != nil {
			return nil, err
		}
		contextText = strings.Join(ctxLines, "\n")
	}

	chunks, err := chunk.Split(lines, cfg.Chunk)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	fmt.Fprintf(w, "analyzing %s: %d lines, %d chunks\n", code, len(lines), len(chunks))

	outcomes := processChunks(ctx, backend, cfg, tmpl, contextText, code, chunks, w)

	// Everything below runs strictly after the pool drains.
	run, err := newRunWriter(cfg.OutputDir, code, started)
	if err != nil {
		return nil, err
	}

	result := &Result{ModuleCode: code, RunDir: run.dir}
	var accepted []types.UseCase
	seq := 0

	for i, out := range outcomes {
		switch out.category {
		case types.Accepted:
			seq++
			id := usecase.Extract(out.text, code, seq)
			uc := types.UseCase{
				ID:         id.ID,
				Title:      id.Title,
				FileName:   id.FileName,
				ModuleCode: code,
				ChunkIndex: i,
				Score:      out.score,
				Text:       out.text,
			}
			accepted = append(accepted, uc)
			result.Summary.Accepted++
			run.writeFile(id.FileName+".md", out.text, w)
			fmt.Fprintf(w, "accepted  chunk %d: %s (score %.2f)\n", i+1, id.ID, out.score)
		case types.LowConfidence:
			result.Summary.LowConfidence++
			run.writeFile(filepath.Join(lowConfidenceDir, fmt.Sprintf("low_conf_chunk_%d.md", i+1)), out.text, w)
			fmt.Fprintf(w, "low-conf  chunk %d (score %.2f)\n", i+1, out.score)
		default:
			result.Summary.Failed++
			fmt.Fprintf(w, "failed    chunk %d\n", i+1)
		}
	}

	run.writeRawLog(outcomes, w)
	run.writeFailureLog(outcomes, w)

	result.UseCases = accepted
	unique := dedupe.By(accepted, func(uc types.UseCase) string { return uc.Text }, cfg.FuzzyThreshold)
	result.Unique = len(unique)
	run.writeSummary(unique, w)

	run.writeManifest(types.RunManifest{
		SourceFile: sourcePath,
		ModuleCode: code,
		StartedAt:  started.UTC(),
		FinishedAt: time.Now().UTC(),
		Chunks:     len(chunks),
		Unique:     len(unique),
		Summary:    result.Summary,
		Config:     cfg,
	}, w)

	if err := run.err(); err != nil {
		return nil, err
	}

	fmt.Fprintf(w, "\n%s: %d accepted (%d unique), %d low-confidence, %d failed -> %s\n",
		code, result.Summary.Accepted, result.Unique,
		result.Summary.LowConfidence, result.Summary.Failed, run.dir)

	return result, nil
}

// processChunks fans the chunks out over a bounded worker pool and
// collects one outcome per chunk. The local model server is effectively
// a serialized resource, so extra workers mostly help when the backend
// queues requests; the default pool size is 1.
func processChunks(ctx context.Context, backend model.Backend, cfg types.AnalyzeConfig, tmpl, contextText, code string, chunks []chunk.Chunk, w io.Writer) []outcome {
	outcomes := make([]outcome, len(chunks))

	inv := model.Invoker{
		Backend:  backend,
		Attempts: cfg.Model.Retries + 1,
		Delay:    cfg.Model.RetryDelay,
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for i := range chunks {
		i := i
		g.Go(func() error {
			p := prompt.Build(tmpl, chunks[i].Text, contextText, prompt.Metadata{ModuleCode: code})

			text, ok := inv.Invoke(ctx, cfg.Model.Primary, p)
			if !ok && cfg.Model.Fallback != "" {
				text, ok = inv.Invoke(ctx, cfg.Model.Fallback, p)
			}
			if !ok {
				outcomes[i] = outcome{category: types.Failed}
				return nil
			}

			text = sections.StampModuleCode(sections.Normalize(text), code)
			cat, score := sections.Score(text, cfg.Validation)
			outcomes[i] = outcome{category: cat, score: score, text: text}
			return nil
		})
	}
	g.Wait()

	return outcomes
}

// readLines reads a line-oriented text file, stripping line endings.
// Unreadable input is a hard error; the run must not start on it.
func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source %s: %w", path, err)
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines, nil
}
