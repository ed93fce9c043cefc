// recorderctl is a CLI client for the traffic recorder API.
//
// Usage:
//
//	recorderctl status
//	recorderctl record on
//	recorderctl logs --limit 20
//	recorderctl logs <request-id> -o yaml
//	recorderctl clear
//	recorderctl ingest -f events.json
//
// The server address comes from --server or RECORDERCTL_SERVER.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"traffic-recorder/internal/infrastructure/httpclient"
)

var (
	version   = "dev"
	outputFmt string
	settings  = viper.New()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "recorderctl",
		Short: "Control a running traffic recorder",
		Long: `recorderctl talks to the traffic recorder HTTP API.

It toggles recording, lists and clears captured logs, and can replay
lifecycle notifications from a file.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json, yaml")
	rootCmd.PersistentFlags().String("server", "http://localhost:8080", "Recorder base URL")
	rootCmd.PersistentFlags().Duration("timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log requests and responses")

	settings.SetEnvPrefix("recorderctl")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()
	_ = settings.BindPFlags(rootCmd.PersistentFlags())

	// Add subcommands
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(recordCmd())
	rootCmd.AddCommand(logsCmd())
	rootCmd.AddCommand(clearCmd())
	rootCmd.AddCommand(ingestCmd())

	return rootCmd
}

func getClient() (httpclient.HTTPClient, error) {
	server := settings.GetString("server")
	if server == "" {
		return nil, fmt.Errorf("server address is empty")
	}

	logger := zap.NewNop()
	if settings.GetBool("verbose") {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		logger = l
	}

	return httpclient.NewHTTPClient(server, settings.GetDuration("timeout"), logger), nil
}
