// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chunk

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pdiddy/usecase-engine/pkg/types"
)

func makeLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line-%04d", i)
	}
	return lines
}

func TestSplitStrict(t *testing.T) {
	tests := []struct {
		name      string
		lines     int
		size      int
		overlap   int
		wantCount int
		wantSpans [][2]int
	}{
		{
			name:    "300 lines window 90 overlap 30",
			lines:   300,
			size:    90,
			overlap: 30,
			// stride 60: the window at 240 would need lines up to 330
			// and is dropped.
			wantCount: 4,
			wantSpans: [][2]int{{0, 90}, {60, 150}, {120, 210}, {180, 270}},
		},
		{
			name:      "exact single window",
			lines:     90,
			size:      90,
			overlap:   30,
			wantCount: 1,
			wantSpans: [][2]int{{0, 90}},
		},
		{
			name:      "document shorter than window",
			lines:     89,
			size:      90,
			overlap:   30,
			wantCount: 0,
		},
		{
			name:      "zero overlap",
			lines:     200,
			size:      50,
			overlap:   0,
			wantCount: 4,
			wantSpans: [][2]int{{0, 50}, {50, 100}, {100, 150}, {150, 200}},
		},
		{
			name:      "empty document",
			lines:     0,
			size:      90,
			overlap:   30,
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := types.ChunkConfig{Size: tt.size, Overlap: tt.overlap, Tail: types.TailStrict}
			chunks, err := Split(makeLines(tt.lines), cfg)
			if err != nil {
				t.Fatalf("Split: %v", err)
			}
			if len(chunks) != tt.wantCount {
				t.Fatalf("got %d chunks, want %d", len(chunks), tt.wantCount)
			}
			if got := Count(tt.lines, cfg); got != tt.wantCount {
				t.Errorf("Count = %d, want %d", got, tt.wantCount)
			}
			for i, span := range tt.wantSpans {
				if chunks[i].Start != span[0] || chunks[i].End != span[1] {
					t.Errorf("chunk[%d] span = [%d:%d], want [%d:%d]",
						i, chunks[i].Start, chunks[i].End, span[0], span[1])
				}
				if chunks[i].Index != i {
					t.Errorf("chunk[%d].Index = %d", i, chunks[i].Index)
				}
			}
		})
	}
}

func TestSplitPermissiveKeepsTail(t *testing.T) {
	cfg := types.ChunkConfig{Size: 90, Overlap: 30, Tail: types.TailPermissive}
	chunks, err := Split(makeLines(300), cfg)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) != 5 {
		t.Fatalf("got %d chunks, want 5", len(chunks))
	}
	last := chunks[4]
	if last.Start != 240 || last.End != 300 {
		t.Errorf("tail span = [%d:%d], want [240:300]", last.Start, last.End)
	}
	if last.Lines() != 60 {
		t.Errorf("tail length = %d, want 60", last.Lines())
	}
	if got := Count(300, cfg); got != 5 {
		t.Errorf("Count = %d, want 5", got)
	}
}

func TestSplitPermissiveShortDocument(t *testing.T) {
	cfg := types.ChunkConfig{Size: 90, Overlap: 30, Tail: types.TailPermissive}
	chunks, err := Split(makeLines(40), cfg)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Start != 0 || chunks[0].End != 40 {
		t.Errorf("span = [%d:%d], want [0:40]", chunks[0].Start, chunks[0].End)
	}
}

func TestSplitAdjacentOverlap(t *testing.T) {
	cfg := types.ChunkConfig{Size: 90, Overlap: 30, Tail: types.TailStrict}
	chunks, err := Split(makeLines(300), cfg)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	for i := 1; i < len(chunks); i++ {
		prev := strings.Split(chunks[i-1].Text, "\n")
		cur := strings.Split(chunks[i].Text, "\n")
		tail := prev[len(prev)-cfg.Overlap:]
		head := cur[:cfg.Overlap]
		for j := range tail {
			if tail[j] != head[j] {
				t.Fatalf("chunks %d/%d disagree at overlap line %d: %q vs %q",
					i-1, i, j, tail[j], head[j])
			}
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	cfg := types.ChunkConfig{Size: 17, Overlap: 5, Tail: types.TailPermissive}
	lines := makeLines(123)
	a, err := Split(lines, cfg)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	b, err := Split(lines, cfg)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("runs disagree on count: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestSplitRejectsNonPositiveStride(t *testing.T) {
	for _, cfg := range []types.ChunkConfig{
		{Size: 30, Overlap: 30, Tail: types.TailStrict},
		{Size: 30, Overlap: 45, Tail: types.TailStrict},
		{Size: 0, Overlap: 0, Tail: types.TailStrict},
	} {
		if _, err := Split(makeLines(100), cfg); err == nil {
			t.Errorf("Split(size=%d overlap=%d) succeeded, want error", cfg.Size, cfg.Overlap)
		}
	}
}
