package main

import (
	"context"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"traffic-recorder/internal/domain/entity"
)

var logsLimit int

func logsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs [request-id]",
		Short: "List captured logs or show one",
		Long: `List captured logs, newest first, or show a single log by its
correlation id.

Examples:
  # Latest 20 logs
  recorderctl logs --limit 20

  # One log with headers and body
  recorderctl logs 4711 -o yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: runLogs,
	}

	cmd.Flags().IntVarP(&logsLimit, "limit", "l", 0, "Maximum number of logs (0 = server cap)")

	return cmd
}

func runLogs(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	ctx := context.Background()

	if len(args) == 1 {
		var record entity.LogRecord
		if err := client.Get(ctx, "/api/v1/logs/"+url.PathEscape(args[0]), &record); err != nil {
			return fmt.Errorf("failed to get log: %w", err)
		}
		return outputResult(record, outputFmt)
	}

	path := "/api/v1/logs"
	if logsLimit > 0 {
		path += fmt.Sprintf("?limit=%d", logsLimit)
	}

	var logs []entity.LogRecord
	if err := client.Get(ctx, path, &logs); err != nil {
		return fmt.Errorf("failed to list logs: %w", err)
	}

	return outputResult(LogsResult{Count: len(logs), Logs: logs}, outputFmt)
}
