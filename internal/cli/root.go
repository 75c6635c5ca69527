// Package cli implements the statusctl command tree.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "statusctl",
	Short: "Courier webhook emitter",
	Long: `statusctl posts synthetic courier status updates to a webhook
receiver, replacing the old browser-based emulator form. Give it a voucher,
a status code, and the receiver's URL and API key, and it builds the full
PostStatus payload for you.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI and returns the command error, if any.
func Execute() error {
	return rootCmd.Execute()
}
