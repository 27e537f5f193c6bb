// Package cli implements the passlock-admin command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var adminAddr string

// rootCmd is the base command for the `passlock-admin` binary.
var rootCmd = &cobra.Command{
	Use:   "passlock-admin",
	Short: "Administrative CLI for the Passlock security core.",
	Long: `passlock-admin performs administrative tasks against a running
Passlock security-core instance: inspecting rate-limiter state and
resetting the counters and risk profile of a caller identity.`,
}

// Execute parses arguments and runs the selected command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&adminAddr, "addr",
		"http://localhost:8080", "base URL of the admin server")
}
