package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addID string

var addCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Embed and persist a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addID, "id", "", "document id (generated when omitted)")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	id, err := db.AddDocument(cmd.Context(), args[0], addID)
	if err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	cmd.Println(id)
	return nil
}
