package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func recordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record [on|off]",
		Short: "Turn recording on or off",
		Long: `Turn recording on or off. Requests that start while recording is off
are never captured.

Examples:
  recorderctl record on
  recorderctl record off`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE:      runRecord,
	}

	return cmd
}

func runRecord(cmd *cobra.Command, args []string) error {
	var recording bool
	switch args[0] {
	case "on", "true", "start":
		recording = true
	case "off", "false", "stop":
		recording = false
	default:
		return fmt.Errorf("invalid argument %q: expected on or off", args[0])
	}

	client, err := getClient()
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	var result RecordResult
	body := map[string]bool{"recording": recording}
	if err := client.Put(context.Background(), "/api/v1/recording", body, &result); err != nil {
		return fmt.Errorf("failed to set recording: %w", err)
	}

	return outputResult(result, outputFmt)
}
