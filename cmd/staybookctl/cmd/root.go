package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	authToken string
)

var rootCmd = &cobra.Command{
	Use:           "staybookctl",
	Short:         "Operational CLI for the staybook destination service",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command tree.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("STAYBOOK_SERVER", "http://localhost:8080"), "base URL of the staybook server")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", os.Getenv("STAYBOOK_TOKEN"), "bearer token for operational endpoints")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
