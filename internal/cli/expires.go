package cli

import (
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	secretbin "github.com/secretbin/secretbin-go"
	"github.com/secretbin/secretbin-go/internal/logging"
	"github.com/spf13/cobra"
)

func newExpiresCmd() *cobra.Command {
	var (
		endpoint string
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "expires",
		Short: "List the expiration options offered by the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ep, err := resolveEndpoint(endpoint)
			if err != nil {
				return err
			}

			logger := logging.Discard()
			if verbose {
				logger = logging.NewTextLogger(cmd.ErrOrStderr(), slog.LevelDebug)
			}

			client, err := secretbin.New(cmd.Context(), ep, secretbin.WithLogger(logger))
			if err != nil {
				return err
			}

			cfg := client.Config()
			printBanner(cmd.ErrOrStderr(), cfg.Banner)

			bold := color.New(color.Bold)
			for _, opt := range cfg.ExpiresSorted() {
				marker := "  "
				if opt.ID == cfg.DefaultExpires {
					marker = "* "
				}
				bold.Fprintf(cmd.OutOrStdout(), "%s%-6s", marker, opt.ID)
				fmt.Fprintf(cmd.OutOrStdout(), " %s\n", opt.Expires)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&endpoint, "endpoint", "e", "", "SecretBin server URL (defaults to $SECRETBIN_ENDPOINT)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log request diagnostics to stderr")
	return cmd
}

func init() {
	rootCmd.AddCommand(newExpiresCmd())
}
