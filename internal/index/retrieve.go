// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// QueryOptions narrow a retrieval. An empty Query lists documents,
// optionally restricted to one module code.
type QueryOptions struct {
	Query      string
	ModuleCode string
	MaxResults int
}

// Result is one retrieved use case. Snippet is populated only for
// full-text queries.
type Result struct {
	ID         string `yaml:"id" json:"id"`
	ModuleCode string `yaml:"module_code" json:"module_code"`
	Title      string `yaml:"title" json:"title"`
	Path       string `yaml:"path" json:"path"`
	Snippet    string `yaml:"snippet,omitempty" json:"snippet,omitempty"`
}

// Retrieve runs a full-text query against the index, or lists indexed
// documents when the query is empty.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]Result, error) {
	limit := opts.MaxResults
	if limit <= 0 {
		limit = s.maxResults
	}

	if opts.Query == "" {
		return s.list(ctx, opts.ModuleCode, limit)
	}

	query := `
		SELECT u.id, u.module_code, u.title, u.path,
		       snippet(usecases_fts, 0, '>>', '<<', '...', 16)
		FROM usecases_fts
		JOIN usecases u ON u.rowid = usecases_fts.rowid
		WHERE usecases_fts MATCH ?`
	args := []any{opts.Query}
	if opts.ModuleCode != "" {
		query += ` AND u.module_code = ?`
		args = append(args, opts.ModuleCode)
	}
	query += ` ORDER BY rank LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func (s *Store) list(ctx context.Context, moduleCode string, limit int) ([]Result, error) {
	query := `SELECT id, module_code, title, path, '' FROM usecases`
	args := []any{}
	if moduleCode != "" {
		query += ` WHERE module_code = ?`
		args = append(args, moduleCode)
	}
	query += ` ORDER BY id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing index: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanResults(rows rowScanner) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.ModuleCode, &r.Title, &r.Path, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating result rows: %w", err)
	}
	return results, nil
}

// exportDocument is the full-content record used by Export.
type exportDocument struct {
	ID         string `yaml:"id" json:"id"`
	ModuleCode string `yaml:"module_code" json:"module_code"`
	Title      string `yaml:"title" json:"title"`
	Path       string `yaml:"path" json:"path"`
	Content    string `yaml:"content" json:"content"`
}

// Export writes every indexed document to w in the requested format,
// "yaml" or "json".
func (s *Store) Export(ctx context.Context, format string, w io.Writer) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, module_code, title, path, content FROM usecases ORDER BY id`)
	if err != nil {
		return fmt.Errorf("reading index for export: %w", err)
	}
	defer rows.Close()

	var docs []exportDocument
	for rows.Next() {
		var d exportDocument
		if err := rows.Scan(&d.ID, &d.ModuleCode, &d.Title, &d.Path, &d.Content); err != nil {
			return fmt.Errorf("scanning export row: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating export rows: %w", err)
	}

	switch format {
	case "yaml":
		data, err := yaml.Marshal(docs)
		if err != nil {
			return fmt.Errorf("marshaling export: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	default:
		return fmt.Errorf("unknown export format %q (want yaml or json)", format)
	}
}
