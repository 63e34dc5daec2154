package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/ohler55/ojg/jp"
	"github.com/spf13/cobra"

	"github.com/fautty/fautty/pkg/cli/internal/output"
	"github.com/fautty/fautty/pkg/requestlog"
)

func newLogsCmd(opts *rootOptions) *cobra.Command {
	filter := &LogFilter{}

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List proxied requests",
		Long:  `List the request log of a running proxy, oldest first.`,
		Example: `  # Show every request
  fautty logs

  # Show the last 10 POSTs through the users proxy
  fautty logs --proxy users --method POST -n 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logs, err := opts.client().ListLogs(filter)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return output.JSON(cmd.OutOrStdout(), logs)
			}
			return printSummaries(cmd.OutOrStdout(), logs)
		},
	}
	cmd.Flags().StringVar(&filter.Proxy, "proxy", "", "Filter by proxy name")
	cmd.Flags().StringVarP(&filter.Method, "method", "m", "", "Filter by HTTP method")
	cmd.Flags().IntVarP(&filter.Limit, "limit", "n", 0, "Show only the most recent N entries")

	cmd.AddCommand(
		newLogsShowCmd(opts),
		newLogsFollowCmd(opts),
		newLogsClearCmd(opts),
	)
	return cmd
}

func newLogsShowCmd(opts *rootOptions) *cobra.Command {
	var selector string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one request with its response or error",
		Example: `  fautty logs show 3
  fautty logs show 3 --select '$.response.status'
  fautty logs show 3 --select '$.request.headers.Host'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid log id %q", args[0])
			}
			raw, err := opts.client().GetLog(id)
			if err != nil {
				return err
			}
			if selector != "" {
				return printSelection(cmd.OutOrStdout(), raw, selector)
			}
			if opts.jsonOutput {
				var v any
				if err := json.Unmarshal(raw, &v); err != nil {
					return fmt.Errorf("failed to parse response: %w", err)
				}
				return output.JSON(cmd.OutOrStdout(), v)
			}
			var detail requestlog.Detail
			if err := json.Unmarshal(raw, &detail); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			printDetail(cmd.OutOrStdout(), &detail)
			return nil
		},
	}
	cmd.Flags().StringVar(&selector, "select", "", "JSONPath expression evaluated against the log detail")
	return cmd
}

func newLogsFollowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "follow",
		Short: "Stream request log events as they happen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return followLogs(ctx, opts.client().StreamURL(), cmd.OutOrStdout(), opts.jsonOutput)
		},
	}
}

func newLogsClearCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the request log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := opts.client().ClearLogs()
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return output.JSON(cmd.OutOrStdout(), map[string]int{"cleared": n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d log entries\n", n)
			return nil
		},
	}
}

// printSelection evaluates a JSONPath against the detail and prints each match.
func printSelection(w io.Writer, raw []byte, selector string) error {
	expr, err := jp.ParseString(selector)
	if err != nil {
		return fmt.Errorf("invalid --select expression: %w", err)
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	results := expr.Get(data)
	if len(results) == 0 {
		return fmt.Errorf("no value matches %s", selector)
	}
	for _, v := range results {
		if s, ok := v.(string); ok {
			fmt.Fprintln(w, s)
			continue
		}
		if err := output.JSON(w, v); err != nil {
			return err
		}
	}
	return nil
}

// followLogs reads events from the stream until ctx is done or the server closes it.
func followLogs(ctx context.Context, streamURL string, w io.Writer, jsonOutput bool) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, streamURL, nil)
	if err != nil {
		return &APIError{
			ErrorCode: errCodeConnection,
			Message:   fmt.Sprintf("cannot open log stream at %s: %v", streamURL, err),
		}
	}
	defer func() { _ = conn.Close() }()

	go func() {
		<-ctx.Done()
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}()

	if !jsonOutput {
		fmt.Fprintln(w, "Streaming logs (press Ctrl+C to stop)...")
	}
	for {
		var ev requestlog.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return fmt.Errorf("log stream closed: %s", closeErr.Text)
			}
			return fmt.Errorf("error reading stream: %w", err)
		}
		if jsonOutput {
			if err := json.NewEncoder(w).Encode(ev); err != nil {
				return err
			}
			continue
		}
		printEvent(w, &ev)
	}
}

func printSummaries(w io.Writer, logs []requestlog.Summary) error {
	if len(logs) == 0 {
		fmt.Fprintln(w, "No requests logged")
		return nil
	}
	tw := output.Table(w)
	fmt.Fprintln(tw, "ID\tDATE\tPROXY\tMETHOD\tURL")
	for _, s := range logs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			s.ID, s.Date.Local().Format("2006-01-02 15:04:05"), s.Proxy, strings.ToUpper(s.Method), s.URL)
	}
	return tw.Flush()
}

func printEvent(w io.Writer, ev *requestlog.Event) {
	d := ev.Log
	if d == nil {
		return
	}
	switch ev.Type {
	case requestlog.EventRequest:
		fmt.Fprintf(w, "#%d  -> %s %s (%s)\n", d.ID, strings.ToUpper(d.Method), d.URL, d.Proxy)
	case requestlog.EventResponse:
		if d.Response == nil {
			return
		}
		fmt.Fprintf(w, "#%d  <- %d\n", d.ID, d.Response.Status)
	case requestlog.EventError:
		if d.Error == nil {
			return
		}
		fmt.Fprintf(w, "#%d  !! %s: %s\n", d.ID, d.Error.Kind, d.Error.Message)
	}
}

func printDetail(w io.Writer, d *requestlog.Detail) {
	fmt.Fprintf(w, "ID:      %d\n", d.ID)
	fmt.Fprintf(w, "Date:    %s\n", d.Date.Local().Format("2006-01-02 15:04:05.000"))
	fmt.Fprintf(w, "Proxy:   %s\n", d.Proxy)
	fmt.Fprintf(w, "Request: %s %s\n", strings.ToUpper(d.Method), d.URL)
	if d.Request != nil {
		printHeaders(w, d.Request.Headers)
		printBody(w, d.Request.Body)
	}

	switch {
	case d.Response != nil:
		fmt.Fprintf(w, "\nResponse: %d\n", d.Response.Status)
		printHeaders(w, d.Response.Headers)
		printBody(w, d.Response.Body)
	case d.Error != nil:
		fmt.Fprintf(w, "\nError (%s): %s\n", d.Error.Kind, d.Error.Message)
	default:
		fmt.Fprintln(w, "\n(pending)")
	}
}
