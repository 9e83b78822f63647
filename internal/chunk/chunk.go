// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chunk splits an ordered sequence of source lines into
// overlapping fixed-size windows.
package chunk

import (
	"fmt"
	"strings"

	"github.com/pdiddy/usecase-engine/pkg/types"
)

// Chunk is one contiguous window of a source listing, joined into a
// single text block. Start and End are line offsets into the original
// sequence, half-open.
type Chunk struct {
	Index int
	Start int
	End   int
	Text  string
}

// Lines returns the number of source lines in the chunk.
func (c Chunk) Lines() int {
	return c.End - c.Start
}

// Split windows lines into chunks of cfg.Size with cfg.Overlap shared
// lines between neighbors. Under types.TailStrict a trailing window
// shorter than Size is dropped; under types.TailPermissive it is kept.
// The result is a pure function of (len(lines), Size, Overlap, Tail).
//
// The caller is expected to have validated the configuration; Split
// still refuses a non-positive stride because it would loop forever.
func Split(lines []string, cfg types.ChunkConfig) ([]Chunk, error) {
	stride := cfg.Size - cfg.Overlap
	if cfg.Size <= 0 || stride <= 0 {
		return nil, fmt.Errorf("invalid chunk window: size %d, overlap %d", cfg.Size, cfg.Overlap)
	}

	var chunks []Chunk
	for start := 0; start < len(lines); start += stride {
		end := start + cfg.Size
		if end > len(lines) {
			if cfg.Tail == types.TailStrict {
				break
			}
			end = len(lines)
		}
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Start: start,
			End:   end,
			Text:  strings.Join(lines[start:end], "\n"),
		})
		if end == len(lines) {
			break
		}
	}
	return chunks, nil
}

// Count returns the number of chunks Split would produce for a document
// of lineCount lines, without materializing them.
func Count(lineCount int, cfg types.ChunkConfig) int {
	stride := cfg.Size - cfg.Overlap
	if cfg.Size <= 0 || stride <= 0 || lineCount <= 0 {
		return 0
	}
	if cfg.Tail == types.TailStrict {
		if lineCount < cfg.Size {
			return 0
		}
		return (lineCount-cfg.Size)/stride + 1
	}
	n := 0
	for start := 0; start < lineCount; start += stride {
		n++
		if start+cfg.Size >= lineCount {
			break
		}
	}
	return n
}
