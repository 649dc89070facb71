package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every document in the database",
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	if err := db.Reset(cmd.Context()); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	cmd.Println("database reset")
	return nil
}
