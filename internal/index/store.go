// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index maintains a searchable SQLite index over the accepted
// use-case documents written by analysis runs. The analysis pipeline
// itself never touches the index; indexing is a separate pass over the
// flat-file artifacts.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/usecase-engine/pkg/types"
)

const dbFile = "usecases.db"

// artifactPattern matches accepted use-case artifacts and captures the
// identifier and module code: UC-AP160-007-Some-Title.md.
var artifactPattern = regexp.MustCompile(`^(UC-([A-Za-z0-9]+)-\d+)\S*\.md$`)

// titlePattern matches the first top-level heading in a document.
var titlePattern = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// Store manages the use-case index database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the index database at indexDir/usecases.db,
// creating the schema when missing.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS usecases (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			module_code TEXT NOT NULL,
			title TEXT,
			run_dir TEXT NOT NULL,
			path TEXT NOT NULL UNIQUE,
			content TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_usecases_module ON usecases(module_code)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			path TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='usecases_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE usecases_fts USING fts5(content, content=usecases, content_rowid=rowid)`,
			`CREATE TRIGGER usecases_ai AFTER INSERT ON usecases BEGIN
				INSERT INTO usecases_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER usecases_ad AFTER DELETE ON usecases BEGIN
				INSERT INTO usecases_fts(usecases_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
			`CREATE TRIGGER usecases_au AFTER UPDATE ON usecases BEGIN
				INSERT INTO usecases_fts(usecases_fts, rowid, content) VALUES('delete', old.rowid, old.content);
				INSERT INTO usecases_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from one indexing pass.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of artifacts considered.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest walks outputDir for accepted use-case artifacts and loads new
// or changed ones into the database. Unchanged files are skipped by
// modification time, so repeat passes are cheap.
func (s *Store) Ingest(ctx context.Context, outputDir string, w io.Writer) (IngestSummary, error) {
	var summary IngestSummary

	err := filepath.WalkDir(outputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Low-confidence documents are review material, not results.
			if d.Name() == "LOW_CONFIDENCE" {
				return filepath.SkipDir
			}
			return nil
		}
		m := artifactPattern.FindStringSubmatch(d.Name())
		if m == nil {
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		switch s.ingestFile(ctx, path, m[1], m[2], w) {
		case ingestIndexed:
			summary.Indexed++
		case ingestUpdated:
			summary.Updated++
		case ingestSkipped:
			summary.Skipped++
		case ingestFailed:
			summary.Failed++
		}
		return nil
	})
	if err != nil {
		return summary, fmt.Errorf("walking %s: %w", outputDir, err)
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)
	return summary, nil
}

type ingestOutcome int

const (
	ingestIndexed ingestOutcome = iota
	ingestUpdated
	ingestSkipped
	ingestFailed
)

func (s *Store) ingestFile(ctx context.Context, path, id, moduleCode string, w io.Writer) ingestOutcome {
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(w, "failed  %s: %v\n", path, err)
		return ingestFailed
	}
	modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

	var storedModTime string
	err = s.db.QueryRowContext(ctx,
		`SELECT file_mod_time FROM indexing_status WHERE path = ?`, path,
	).Scan(&storedModTime)
	if err == nil && storedModTime == modTime {
		fmt.Fprintf(w, "skipped %s\n", id)
		return ingestSkipped
	}
	isUpdate := err == nil

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "failed  %s: %v\n", path, err)
		return ingestFailed
	}
	content := string(data)

	title := ""
	if m := titlePattern.FindStringSubmatch(content); m != nil {
		title = strings.TrimSpace(m[1])
	}

	if err := s.upsert(ctx, id, strings.ToUpper(moduleCode), title, path, content, modTime); err != nil {
		fmt.Fprintf(w, "failed  %s: %v\n", id, err)
		return ingestFailed
	}

	if isUpdate {
		fmt.Fprintf(w, "updated %s\n", id)
		return ingestUpdated
	}
	fmt.Fprintf(w, "indexed %s\n", id)
	return ingestIndexed
}

func (s *Store) upsert(ctx context.Context, id, moduleCode, title, path, content, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Delete-then-insert keeps the FTS triggers simple.
	if _, err := tx.ExecContext(ctx, `DELETE FROM usecases WHERE path = ?`, path); err != nil {
		return fmt.Errorf("deleting stale row: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO usecases (id, module_code, title, run_dir, path, content)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, moduleCode, title, filepath.Dir(path), path, content,
	)
	if err != nil {
		return fmt.Errorf("inserting use case %s: %w", id, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (path, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(path) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		path, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}
