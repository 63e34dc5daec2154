package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// DefaultAdminURL is where client commands look for a running proxy.
const DefaultAdminURL = "http://localhost:3000"

// AdminURLEnv overrides DefaultAdminURL.
const AdminURLEnv = "FAUTTY_ADMIN_URL"

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	adminURL   string
	jsonOutput bool
}

func (o *rootOptions) client() AdminClient {
	return NewAdminClient(o.adminURL)
}

// NewRootCmd builds the fautty command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "fautty",
		Short: "fautty is a transparent HTTP proxy with one-shot mock substitution",
		Long: `fautty forwards requests under configured route prefixes to upstream
services and records every exchange. Registered mocks replace the upstream
response for a single matching call, which makes it easy to inject faults into
an otherwise real environment.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.adminURL, "admin-url", defaultAdminURL(), "Admin API base URL")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output command results in JSON format")

	cmd.AddCommand(
		newServeCmd(),
		newLogsCmd(opts),
		newMocksCmd(opts),
		newHealthCmd(opts),
		newVersionCmd(opts),
	)
	return cmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, FormatError(err))
		os.Exit(1)
	}
}

func defaultAdminURL() string {
	if v := os.Getenv(AdminURLEnv); v != "" {
		return v
	}
	return DefaultAdminURL
}
