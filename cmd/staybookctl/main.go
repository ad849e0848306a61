// staybookctl is the operational CLI for the staybook destination service:
// country seeding and an interactive destination search client.
package main

import (
	"os"

	"github.com/avelkov/staybook/cmd/staybookctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
