package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/reflow/internal/config"
	"github.com/vango-dev/reflow/internal/demo"
	"github.com/vango-dev/reflow/internal/errors"
	"github.com/vango-dev/reflow/pkg/metrics"
	"github.com/vango-dev/reflow/pkg/runtime"
	"github.com/vango-dev/reflow/pkg/server"
	"github.com/vango-dev/reflow/pkg/tracing"
)

type serveOptions struct {
	address string
	delay   time.Duration
}

func serveCmd(flags *globalFlags) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo application",
		Long: `Run the demo counter application.

The page at / is rendered on the server. Browsers that load the client
script open a live session on the configured live path and receive a
patch for every change.

Examples:
  reflow serve
  reflow serve --address :9000
  reflow serve --config ./reflow.yaml --delay 2s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags.config)
			if err != nil {
				return err
			}
			if opts.address != "" {
				cfg.Server.Address = opts.address
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.address, "address", "a", "", "Listen address (default from reflow.yaml)")
	cmd.Flags().DurationVar(&opts.delay, "delay", time.Second, "Delay of the demo's \"+1 later\" button")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, opts serveOptions, stdout, stderr io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := cfg.Logger(stderr)

	srv := newServer(cfg, opts, logger)

	success(stdout, "Serving on %s", cfg.Server.Address)
	info(stdout, "live sessions on %s", cfg.Server.LivePath)
	if cfg.Metrics.Enabled {
		info(stdout, "metrics on %s", cfg.Metrics.Path)
	}

	if err := srv.ListenAndServe(ctx); err != nil {
		return errors.New("E141").Wrap(err)
	}
	fmt.Fprintln(stdout)
	success(stdout, "Stopped")
	return nil
}

// newServer builds the server for cfg with its observers and the metrics
// endpoint mounted.
func newServer(cfg *config.Config, opts serveOptions, logger *slog.Logger) *server.Server {
	var (
		observers []runtime.Observer
		hooks     server.Hooks = server.NopHooks{}
		registry  *prometheus.Registry
	)

	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m := metrics.New(
			metrics.WithNamespace(cfg.Metrics.Namespace),
			metrics.WithRegistry(registry),
		)
		observers = append(observers, m)
		hooks = m
	}
	if cfg.Tracing.Enabled {
		observers = append(observers, tracing.New(tracing.WithTracerName(cfg.Tracing.Name)))
	}

	srv := server.New(demo.Program(opts.delay), cfg.ServerConfig(),
		server.WithLogger(logger),
		server.WithObserver(runtime.Observers(observers...)),
		server.WithHooks(hooks),
	)

	if registry != nil {
		srv.Router().Handle(cfg.Metrics.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{
			ErrorLog: promLogger{logger},
		}))
	}
	return srv
}

// promLogger adapts slog to promhttp's error log.
type promLogger struct {
	logger *slog.Logger
}

func (l promLogger) Println(v ...any) {
	l.logger.Error("metrics handler", "error", fmt.Sprint(v...))
}
