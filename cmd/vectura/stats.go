package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/vectura/internal/version"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show document count and build info",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	count, err := db.DocumentCount(cmd.Context())
	if err != nil {
		return fmt.Errorf("document count: %w", err)
	}
	cmd.Printf("documents: %d\n", count)
	cmd.Printf("version:   %s (%s, %s)\n", version.Version, version.Commit, version.Date)
	return nil
}
