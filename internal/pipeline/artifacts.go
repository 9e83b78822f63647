// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/usecase-engine/internal/sections"
	"github.com/pdiddy/usecase-engine/pkg/types"
)

const (
	rawLogFile       = "RAW_RESPONSES.md"
	summaryFile      = "SUMMARY.md"
	failureLogFile   = "FAILED_CHUNKS.txt"
	manifestFile     = "run.yaml"
	lowConfidenceDir = "LOW_CONFIDENCE"
)

// runWriter writes the artifact tree for one run. Individual write
// errors are logged and counted but do not stop the run; only a run
// where every write failed is reported as an error.
type runWriter struct {
	dir    string
	wrote  int
	failed int
}

// newRunWriter creates the timestamped run directory:
// <base>/usecases-<date>/<code>_<timestamp>/.
func newRunWriter(baseDir, code string, started time.Time) (*runWriter, error) {
	dir := filepath.Join(
		baseDir,
		"usecases-"+started.Format("2006-01-02"),
		fmt.Sprintf("%s_%s", code, started.Format("20060102_150405")),
	)
	if err := os.MkdirAll(filepath.Join(dir, lowConfidenceDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating run directory %s: %w", dir, err)
	}
	return &runWriter{dir: dir}, nil
}

// writeFile writes one artifact, logging failures without aborting.
func (r *runWriter) writeFile(relPath, content string, w io.Writer) {
	path := filepath.Join(r.dir, relPath)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		fmt.Fprintf(w, "write failed: %s: %v\n", relPath, err)
		r.failed++
		return
	}
	r.wrote++
}

// writeRawLog records every non-absent response for audit.
func (r *runWriter) writeRawLog(outcomes []outcome, w io.Writer) {
	var b strings.Builder
	for i, out := range outcomes {
		if out.text == "" {
			continue
		}
		fmt.Fprintf(&b, "\n\n# Chunk %d\n%s\n%s\n", i+1, out.text, strings.Repeat("=", 50))
	}
	r.writeFile(rawLogFile, b.String(), w)
}

// writeFailureLog lists the chunks that produced no usable output.
func (r *runWriter) writeFailureLog(outcomes []outcome, w io.Writer) {
	var b strings.Builder
	for i, out := range outcomes {
		if out.category == types.Failed || out.category == types.FailedParse {
			fmt.Fprintf(&b, "Chunk %d failed\n", i+1)
		}
	}
	r.writeFile(failureLogFile, b.String(), w)
}

// writeSummary renders the deduplicated accepted results in the fixed
// narrative layout.
func (r *runWriter) writeSummary(unique []types.UseCase, w io.Writer) {
	var b strings.Builder
	for _, uc := range unique {
		b.WriteString(sections.Narrative(uc.Text))
		b.WriteString("\n\n")
		b.WriteString(strings.Repeat("=", 60))
		b.WriteString("\n\n")
	}
	r.writeFile(summaryFile, b.String(), w)
}

// writeManifest records the run settings and counts as run.yaml.
func (r *runWriter) writeManifest(m types.RunManifest, w io.Writer) {
	data, err := yaml.Marshal(m)
	if err != nil {
		fmt.Fprintf(w, "write failed: %s: %v\n", manifestFile, err)
		r.failed++
		return
	}
	r.writeFile(manifestFile, string(data), w)
}

// err reports a hard failure only when nothing could be written at all.
func (r *runWriter) err() error {
	if r.failed > 0 && r.wrote == 0 {
		return fmt.Errorf("every artifact write failed in %s", r.dir)
	}
	return nil
}
