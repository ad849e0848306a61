package cmd

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/avelkov/staybook/internal/destination"
	"github.com/avelkov/staybook/internal/searchinput"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Interactively search destinations",
	Long: "Reads queries from stdin and shows matching destinations as you type. " +
		"Enter a result number to select it (records the selection), or 'q' to quit.",
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	client := newAPIClient(serverURL, authToken)
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))

	var mu sync.Mutex
	var shown []destination.Projection

	input := searchinput.New(client, func(res searchinput.Results) {
		mu.Lock()
		defer mu.Unlock()
		if res.Err != nil {
			fmt.Fprintf(out, "search failed: %v\n", res.Err)
			shown = nil
			return
		}
		shown = res.Destinations
		printResults(out, shown)
	}, log, searchinput.WithNotifier(client))
	defer input.Close()

	fmt.Fprintln(out, "type a destination (min 2 characters), a result number to select, or 'q' to quit")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "q" {
			return nil
		}

		if n, err := strconv.Atoi(line); err == nil {
			mu.Lock()
			if n >= 1 && n <= len(shown) {
				picked := shown[n-1]
				input.Select(picked)
				fmt.Fprintf(out, "selected %s, %s\n", picked.CityName, picked.CountryName)
			} else {
				fmt.Fprintln(out, "no such result")
			}
			mu.Unlock()
			continue
		}

		input.Update(line)
	}

	return scanner.Err()
}

func printResults(out io.Writer, results []destination.Projection) {
	if len(results) == 0 {
		fmt.Fprintln(out, "no destinations found")
		return
	}
	for i, p := range results {
		label := ""
		if p.IsCountryLevel() {
			label = " [country]"
		}
		fmt.Fprintf(out, "%2d. %s, %s (%s)%s\n", i+1, p.CityName, p.CountryName, p.CountryCode, label)
	}
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
