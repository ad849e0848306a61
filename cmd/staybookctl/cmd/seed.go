package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed <country-code>",
	Short: "Load every known city of a country into the local store",
	Long:  "Fetches the supplier's city directory for the given ISO-2 country code and upserts it into the destination store via the server's seed endpoint.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	client := newAPIClient(serverURL, authToken)

	resp, err := client.Seed(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
	return nil
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
