package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	secretbin "github.com/secretbin/secretbin-go"
	"github.com/secretbin/secretbin-go/internal/cryptox"
	"github.com/secretbin/secretbin-go/internal/logging"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type submitFlags struct {
	endpoint  string
	message   string
	files     []string
	expires   string
	burnAfter int
	password  bool
	verbose   bool
}

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func newSubmitCmd() *cobra.Command {
	flags := &submitFlags{}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Encrypt a secret and upload it, printing the share link",
		Long: `Encrypts the message and any attached files locally, uploads the
ciphertext and prints the share link. Without --message the secret text is
read from standard input, so secrets can be piped in without touching the
shell history.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.endpoint, "endpoint", "e", "", "SecretBin server URL (defaults to $SECRETBIN_ENDPOINT)")
	cmd.Flags().StringVarP(&flags.message, "message", "m", "", "secret message (read from stdin when omitted)")
	cmd.Flags().StringArrayVarP(&flags.files, "file", "f", nil, "attach a file (repeatable)")
	cmd.Flags().StringVar(&flags.expires, "expires", "", "expiration id, e.g. 1hr (server default when omitted)")
	cmd.Flags().IntVar(&flags.burnAfter, "burn-after", 0, "delete the secret after N reads (0 = no limit)")
	cmd.Flags().BoolVarP(&flags.password, "password", "p", false, "prompt for an additional password")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "log request diagnostics to stderr")

	return cmd
}

func init() {
	rootCmd.AddCommand(newSubmitCmd())
}

func runSubmit(cmd *cobra.Command, flags *submitFlags) error {
	endpoint, err := resolveEndpoint(flags.endpoint)
	if err != nil {
		return err
	}

	message := flags.message
	if message == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading secret from stdin: %w", err)
		}
		message = strings.TrimRight(string(data), "\n")
	}

	secret := &secretbin.Secret{Message: message}
	for _, file := range flags.files {
		if err := secret.AddFileAttachment(file); err != nil {
			return err
		}
	}

	var password []byte
	if flags.password {
		password, err = promptPassword(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer cryptox.Wipe(password)
	}

	logger := logging.Discard()
	if flags.verbose {
		logger = logging.NewTextLogger(cmd.ErrOrStderr(), slog.LevelDebug)
	}

	sp := newSpinner(cmd.ErrOrStderr(), " contacting server...")
	sp.Start()
	client, err := secretbin.New(cmd.Context(), endpoint, secretbin.WithLogger(logger))
	sp.Stop()
	if err != nil {
		return err
	}

	printBanner(cmd.ErrOrStderr(), client.Config().Banner)

	sp = newSpinner(cmd.ErrOrStderr(), " submitting secret...")
	sp.Start()
	link, err := client.Submit(cmd.Context(), secret, secretbin.Options{
		Password:  string(password),
		Expires:   flags.expires,
		BurnAfter: flags.burnAfter,
	})
	sp.Stop()
	if err != nil {
		return err
	}

	color.New(color.FgGreen, color.Bold).Fprintln(cmd.OutOrStdout(), link)
	return nil
}

func resolveEndpoint(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("SECRETBIN_ENDPOINT"); env != "" {
		return env, nil
	}
	return "", errors.New("no server endpoint: pass --endpoint or set SECRETBIN_ENDPOINT")
}

func promptPassword(w io.Writer) ([]byte, error) {
	fmt.Fprint(w, "Enter password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}
	return pw, nil
}

func newSpinner(w io.Writer, suffix string) *spinner.Spinner {
	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	sp.Suffix = suffix
	return sp
}

func printBanner(w io.Writer, b *secretbin.Banner) {
	if b == nil || b.Text == "" {
		return
	}
	c := color.New(color.FgCyan)
	switch b.Type {
	case "warning":
		c = color.New(color.FgYellow)
	case "error":
		c = color.New(color.FgRed)
	}
	c.Fprintln(w, b.Text)
}
