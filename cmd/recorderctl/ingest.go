package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"traffic-recorder/internal/domain/entity"
)

var ingestFile string

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Send lifecycle notifications from a JSON file",
		Long: `Send one lifecycle envelope or an array of them to the recorder.
Use "-" to read from stdin.

Examples:
  recorderctl ingest -f events.json
  cat events.json | recorderctl ingest -f -`,
		Args: cobra.NoArgs,
		RunE: runIngest,
	}

	cmd.Flags().StringVarP(&ingestFile, "filename", "f", "", "File containing envelopes (required)")
	_ = cmd.MarkFlagRequired("filename")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	data, err := readInput(ingestFile)
	if err != nil {
		return fmt.Errorf("failed to read events: %w", err)
	}
	if !json.Valid(data) {
		return fmt.Errorf("failed to parse events: %s is not valid JSON", ingestFile)
	}

	client, err := getClient()
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	var result entity.IngestResult
	if err := client.Post(context.Background(), "/api/v1/events", json.RawMessage(data), &result); err != nil {
		return fmt.Errorf("failed to send events: %w", err)
	}

	return outputResult(result, outputFmt)
}

func readInput(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(name)
}
