package cli

import (
	"fmt"
	"time"

	"github.com/fautty/fautty/pkg/cli/internal/output"
	"github.com/spf13/cobra"
)

func newHealthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that a proxy is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := opts.client().Health()
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return output.JSON(cmd.OutOrStdout(), h)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d proxies, up %s, %d logs (%d pending), %d mocks\n",
				h.Status, h.Proxies, time.Duration(h.Uptime)*time.Second, h.Logs, h.PendingLogs, h.Mocks)
			return nil
		},
	}
}
