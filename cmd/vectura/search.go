package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/vectura"
)

var (
	searchLimit     int
	searchThreshold float32
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long:  `Embeds the query text and ranks documents by similarity, optionally fused with lexical scoring when hybrid search is configured.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().Float32Var(&searchThreshold, "threshold", 0, "minimum score (0 applies the configured minThreshold, if any)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	var threshold *float32
	if searchThreshold > 0 {
		threshold = &searchThreshold
	}

	results, err := db.Search(cmd.Context(), vectura.TextQuery(args[0]), &searchLimit, threshold)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	for _, r := range results {
		cmd.Printf("%.4f\t%s\t%s\n", r.Score, r.ID, truncate(r.Text, 80))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
