package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fautty/fautty/pkg/config"
	"github.com/fautty/fautty/pkg/logging"
	"github.com/fautty/fautty/pkg/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// DefaultConfigFile is read by serve when --config is not given.
const DefaultConfigFile = "fautty.yaml"

// serveFlags holds all parsed command-line flags for the serve command.
type serveFlags struct {
	configFile      string
	port            int
	upstreamTimeout time.Duration
	logLevel        string
	logFormat       string
	mocks           []string
}

func newServeCmd() *cobra.Command {
	f := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the proxy (foreground)",
		Long: `Run the proxy and its admin API on a single port.

Requests under each configured route are forwarded to that route's base URL
unless a registered mock is pending for the call. Flags override values from
the configuration file.`,
		Example: `  # Start with fautty.yaml in the current directory
  fautty serve

  # Start with a config file on a custom port
  fautty serve --config proxies.json --port 8080

  # Seed mocks from a directory tree
  fautty serve --mocks 'mocks/**/*.yaml'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadServeConfig(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, config.BaseDir(f.configFile))
		},
	}

	cmd.Flags().StringVarP(&f.configFile, "config", "c", DefaultConfigFile, "Path to the proxy configuration file (JSON or YAML)")
	cmd.Flags().IntVarP(&f.port, "port", "p", config.DefaultPort, "Listener port for proxy and admin routes")
	cmd.Flags().DurationVar(&f.upstreamTimeout, "upstream-timeout", config.DefaultUpstreamTimeout, "Timeout for each upstream call")
	cmd.Flags().StringVar(&f.logLevel, "log-level", config.DefaultLogLevel, "Log level ("+strings.Join(logging.LevelNames(), ", ")+")")
	cmd.Flags().StringVar(&f.logFormat, "log-format", config.DefaultLogFormat, "Log format (text, json)")
	cmd.Flags().StringSliceVar(&f.mocks, "mocks", nil, "Seed mock file globs (replaces the config file's list)")

	return cmd
}

// loadServeConfig reads the configuration file and applies flags the user set.
func loadServeConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("upstream-timeout") {
		d, _ := flags.GetDuration("upstream-timeout")
		cfg.UpstreamTimeout = config.Duration(d)
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.LogFormat, _ = flags.GetString("log-format")
	}
	if flags.Changed("mocks") {
		cfg.Mocks, _ = flags.GetStringSlice("mocks")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runServe starts the server and blocks until ctx is done or a termination
// signal arrives, then shuts down gracefully.
func runServe(ctx context.Context, cfg *config.Config, baseDir string) error {
	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
		Output: os.Stderr,
	})
	slog.SetDefault(log)

	seeds, err := config.LoadSeedMocks(cfg.Mocks, baseDir)
	if err != nil {
		return err
	}
	if len(seeds) > 0 {
		log.Info("seed mocks loaded", "count", len(seeds))
	}

	srv, err := server.New(cfg, server.WithLogger(log), server.WithSeedMocks(seeds))
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case err, ok := <-srv.Errors():
			if ok {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		case <-gctx.Done():
			return nil
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
