package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"traffic-recorder/internal/domain/entity"
)

type healthInfo struct {
	Status          string `json:"status"`
	Version         string `json:"version"`
	Store           string `json:"store"`
	QueueDepth      int    `json:"queue_depth"`
	TrackedRequests int    `json:"tracked_requests"`
}

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recorder health and recording state",
		Long: `Show the recorder's health, store backend, queue depth and whether
recording is on.

Examples:
  # Show status
  recorderctl status

  # Output as JSON
  recorderctl status -o json`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	ctx := context.Background()

	var health healthInfo
	if err := client.Get(ctx, "/health", &health); err != nil {
		return fmt.Errorf("failed to get health: %w", err)
	}

	var recording RecordResult
	if err := client.Get(ctx, "/api/v1/recording", &recording); err != nil {
		return fmt.Errorf("failed to get recording state: %w", err)
	}

	var badge entity.IndicatorState
	if err := client.Get(ctx, "/api/v1/indicator", &badge); err != nil {
		return fmt.Errorf("failed to get indicator: %w", err)
	}

	result := StatusResult{
		Server:          settings.GetString("server"),
		Status:          health.Status,
		Version:         health.Version,
		Store:           health.Store,
		QueueDepth:      health.QueueDepth,
		TrackedRequests: health.TrackedRequests,
		Recording:       recording.Recording,
		Badge:           badge.Text,
	}

	return outputResult(result, outputFmt)
}
