// Package cli implements the secretbin command line interface, a thin layer
// over the client library for sharing encrypted secrets from the terminal.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "secretbin",
	Short: "Share end-to-end encrypted secrets from the terminal",
	Long: `secretbin encrypts a message and optional file attachments locally and
uploads only the ciphertext. The printed share link carries the decryption
key in its fragment, which never reaches the server.

The server endpoint is taken from --endpoint or the SECRETBIN_ENDPOINT
environment variable.`,
	SilenceUsage: true,
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
