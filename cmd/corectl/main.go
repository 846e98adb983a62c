// Command corectl replays recorded review logs and placement transcripts
// through the pure engines (scheduler, placement) without a server, for
// offline debugging and regression inspection.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "corectl",
	Short: "Offline replay tool for the FSRS scheduler and CAT placement engine",
	Long: `corectl replays a recorded review log or placement transcript through
the pure engines, printing the resulting memory states or placement
trajectory. It never touches the database or the HTTP server.`,
}
