package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all captured logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			if err := client.Delete(context.Background(), "/api/v1/logs", nil); err != nil {
				return fmt.Errorf("failed to clear logs: %w", err)
			}

			return outputResult(ClearResult{Cleared: true}, outputFmt)
		},
	}
}
