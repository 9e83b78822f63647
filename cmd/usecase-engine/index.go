package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/usecase-engine/internal/index"
	"github.com/pdiddy/usecase-engine/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Maintain a full-text index over accepted use cases (store, retrieve, export)",
	Long: `Index manages an optional local SQLite index built from the accepted
use-case documents of past analysis runs. The analysis pipeline never
touches the index; run "index store" after analysis to pick up new runs.`,
}

var indexStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Ingest accepted use-case documents into the index",
	Long: `Store walks the output directory for accepted use-case documents,
loads new or changed ones into the SQLite database with FTS5 indexing,
and skips unchanged files on subsequent runs.`,
	RunE: runIndexStore,
}

func runIndexStore(cmd *cobra.Command, args []string) error {
	outputDir, _ := cmd.Flags().GetString("output-dir")

	store, err := index.NewStore(indexConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), outputDir, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d document(s) failed indexing", summary.Failed)
	}
	return nil
}

var indexRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Query the index with full-text search",
	Long: `Retrieve searches indexed use cases with FTS5 full-text search,
optionally restricted to one program code. Without a query it lists
indexed documents.`,
	RunE: runIndexRetrieve,
}

func runIndexRetrieve(cmd *cobra.Command, args []string) error {
	store, err := index.NewStore(indexConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	moduleCode, _ := cmd.Flags().GetString("module")
	limit, _ := cmd.Flags().GetInt("limit")

	results, err := store.Retrieve(context.Background(), index.QueryOptions{
		Query:      strings.Join(args, " "),
		ModuleCode: strings.ToUpper(moduleCode),
		MaxResults: limit,
	})
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(results, jsonOutput)
}

func formatRetrieveOutput(results []index.Result, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-16s  %-8s  %-40s  %s\n", "ID", "Module", "Title", "Match")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for _, r := range results {
		title := r.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		snippet := strings.ReplaceAll(r.Snippet, "\n", " ")
		if len(snippet) > 60 {
			snippet = snippet[:57] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-16s  %-8s  %-40s  %s\n", r.ID, r.ModuleCode, title, snippet)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

var indexExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the index to YAML or JSON on stdout",
	RunE:  runIndexExport,
}

func runIndexExport(cmd *cobra.Command, args []string) error {
	store, err := index.NewStore(indexConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	format, _ := cmd.Flags().GetString("format")
	return store.Export(context.Background(), format, os.Stdout)
}

func indexConfig(cmd *cobra.Command) types.IndexConfig {
	indexDir, _ := cmd.Flags().GetString("index-dir")
	if indexDir == "" {
		indexDir = "index"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return types.IndexConfig{
		IndexDir:   indexDir,
		MaxResults: maxResults,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	indexCmd.PersistentFlags().String("index-dir", "index", "directory holding the SQLite index")
	indexCmd.PersistentFlags().Int("max-results", 20, "default maximum number of query results")

	indexStoreCmd.Flags().String("output-dir", defaultOutputDir, "analysis output directory to ingest")

	indexRetrieveCmd.Flags().String("module", "", "restrict results to one program code")
	indexRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	indexRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	indexExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	indexCmd.AddCommand(indexStoreCmd)
	indexCmd.AddCommand(indexRetrieveCmd)
	indexCmd.AddCommand(indexExportCmd)

	rootCmd.AddCommand(indexCmd)
}
