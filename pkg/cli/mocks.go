package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fautty/fautty/pkg/cli/internal/output"
	"github.com/fautty/fautty/pkg/mock"
)

func newMocksCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mocks",
		Short: "Manage pending mock responses",
	}
	cmd.AddCommand(
		newMocksListCmd(opts),
		newMocksAddCmd(opts),
		newMocksClearCmd(opts),
	)
	return cmd
}

func newMocksListCmd(opts *rootOptions) *cobra.Command {
	var route string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending mocks by call shape",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mocks, err := opts.client().ListMocks(route)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return output.JSON(cmd.OutOrStdout(), mocks)
			}
			return printMocks(cmd.OutOrStdout(), mocks)
		},
	}
	cmd.Flags().StringVar(&route, "route", "", "Only show mocks registered under this route")
	return cmd
}

// mockAddFlags holds the flags of mocks add.
type mockAddFlags struct {
	route   string
	path    string
	method  string
	status  int
	headers []string
	body    string
}

func newMocksAddCmd(opts *rootOptions) *cobra.Command {
	f := &mockAddFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a one-shot mock response",
		Long: `Register a mock that replaces the upstream response for the next matching
call. Mocks for the same call shape stack: the most recently added is served
first.`,
		Example: `  # Fail the next GET /api/users with a 503
  fautty mocks add --route /api --path /users --method GET --status 503

  # Answer with a JSON body and a header
  fautty mocks add --route /api --path /users/1 --method GET \
    --header X-Fault=injected --body '{"id":1,"name":"mock"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := f.registration()
			if err != nil {
				return err
			}
			entries, err := opts.client().CreateMock(reg)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return output.JSON(cmd.OutOrStdout(), entries)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Mock created for %s (%d pending)\n", reg.Key(), len(entries))
			return nil
		},
	}
	cmd.Flags().StringVar(&f.route, "route", "", "Proxy route prefix (e.g. /api)")
	cmd.Flags().StringVar(&f.path, "path", "", "Path below the route (e.g. /users)")
	cmd.Flags().StringVarP(&f.method, "method", "m", "GET", "HTTP method")
	cmd.Flags().IntVarP(&f.status, "status", "s", 0, "Response status (default 200)")
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, "Response header as Name=Value, repeatable")
	cmd.Flags().StringVarP(&f.body, "body", "b", "", "Response body; valid JSON is sent as JSON, anything else as text")
	_ = cmd.MarkFlagRequired("route")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}

// registration builds the mock payload from the flags.
func (f *mockAddFlags) registration() (*mock.Registration, error) {
	reg := &mock.Registration{
		Route:  f.route,
		Path:   f.path,
		Method: f.method,
		Entry:  mock.Entry{Status: f.status},
	}

	if len(f.headers) > 0 {
		reg.Headers = mock.Headers{}
		for _, h := range f.headers {
			name, value, ok := strings.Cut(h, "=")
			name = strings.TrimSpace(name)
			if !ok || name == "" {
				return nil, fmt.Errorf("invalid header %q: expected Name=Value", h)
			}
			reg.Headers[name] = append(reg.Headers[name], strings.TrimSpace(value))
		}
	}

	if f.body != "" {
		if json.Valid([]byte(f.body)) {
			reg.Body = mock.Body(f.body)
		} else {
			encoded, err := json.Marshal(f.body)
			if err != nil {
				return nil, err
			}
			reg.Body = mock.Body(encoded)
		}
	}

	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return reg, nil
}

func newMocksClearCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop every pending mock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := opts.client().ClearMocks()
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return output.JSON(cmd.OutOrStdout(), map[string]int{"cleared": n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d mocks\n", n)
			return nil
		},
	}
}

func printMocks(w io.Writer, mocks map[string][]mock.Entry) error {
	if len(mocks) == 0 {
		fmt.Fprintln(w, "No pending mocks")
		return nil
	}
	keys := make([]string, 0, len(mocks))
	for k := range mocks {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := output.Table(w)
	fmt.Fprintln(tw, "KEY\tPENDING\tNEXT STATUS")
	for _, k := range keys {
		entries := mocks[k]
		next := "-"
		if len(entries) > 0 {
			next = fmt.Sprint(entries[len(entries)-1].EffectiveStatus())
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", k, len(entries), next)
	}
	return tw.Flush()
}
