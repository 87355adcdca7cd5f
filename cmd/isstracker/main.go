// Command isstracker polls the ISS position feed, keeps a bounded history in
// memory and serves it over HTTP.
//
// Logging:
//   - Base logger is created here from the log section of the config
//   - Logger is passed to all components via dependency injection
//   - No global slog configuration (no slog.SetDefault)
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/iss-tracker/internal/api"
	"github.com/rickgao/iss-tracker/internal/config"
	"github.com/rickgao/iss-tracker/internal/logging"
	"github.com/rickgao/iss-tracker/internal/model"
	"github.com/rickgao/iss-tracker/internal/poller"
	"github.com/rickgao/iss-tracker/internal/query"
	"github.com/rickgao/iss-tracker/internal/server"
	"github.com/rickgao/iss-tracker/internal/store"
	"github.com/rickgao/iss-tracker/internal/stream"
	"github.com/rickgao/iss-tracker/internal/version"
)

// stopTimeout bounds how long shutdown waits for the poller's in-flight tick.
const stopTimeout = 5 * time.Second

func main() {
	if err := newRootCmd(os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(logOut io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "isstracker",
		Short:        "Track the International Space Station and serve its recent path",
		Version:      version.String(),
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return run(ctx, cfg, logOut)
		},
	}

	f := cmd.Flags()
	f.String("config", "", "path to YAML config file (optional)")
	f.IntP("max-positions", "m", config.DefaultMaxPositions, "maximum number of positions kept in memory")
	f.IntP("poll-interval", "p", int(config.DefaultPollInterval/time.Second), "seconds between upstream polls")
	f.IntP("timeout", "t", int(config.DefaultUpstreamTimeout/time.Second), "upstream request timeout in seconds")
	f.String("addr", config.DefaultAddr, "HTTP listen address")
	f.String("static-dir", config.DefaultStaticDir, "directory served for non-API paths")
	f.String("log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")
	f.String("log-format", config.DefaultLogFormat, "log format: text, json, console")

	return cmd
}

// loadConfig reads the config file when given, then applies only the flags
// that were set explicitly on the command line.
func loadConfig(cmd *cobra.Command) (*config.TrackerConfig, error) {
	f := cmd.Flags()

	cfg := config.Default()
	if path, _ := f.GetString("config"); path != "" {
		loaded, err := config.LoadWithDefaults(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if f.Changed("max-positions") {
		cfg.Tracker.MaxPositions, _ = f.GetInt("max-positions")
	}
	if f.Changed("poll-interval") {
		secs, _ := f.GetInt("poll-interval")
		cfg.Tracker.PollInterval = time.Duration(secs) * time.Second
	}
	if f.Changed("timeout") {
		secs, _ := f.GetInt("timeout")
		cfg.Upstream.Timeout = time.Duration(secs) * time.Second
	}
	if f.Changed("addr") {
		cfg.Server.Addr, _ = f.GetString("addr")
	}
	if f.Changed("static-dir") {
		cfg.Server.StaticDir, _ = f.GetString("static-dir")
	}
	if f.Changed("log-level") {
		cfg.Log.Level, _ = f.GetString("log-level")
	}
	if f.Changed("log-format") {
		cfg.Log.Format, _ = f.GetString("log-format")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.TrackerConfig, logOut io.Writer) error {
	logger, err := logging.New(logOut, cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return err
	}
	logger = logger.With("instance", cfg.Instance.ID)

	logger.Info("starting isstracker",
		"version", version.Version,
		"commit", version.Commit,
		"upstream", cfg.Upstream.URL,
		"max_positions", cfg.Tracker.MaxPositions,
		"poll_interval", cfg.Tracker.PollInterval,
	)

	ring := store.New[model.Position](cfg.Tracker.MaxPositions)

	var (
		hub           *stream.Hub
		streamHandler http.Handler
	)
	if cfg.Stream.IsEnabled() {
		streamCfg := stream.DefaultConfig()
		streamCfg.BufferSize = cfg.Stream.Buffer
		hub = stream.NewHub(streamCfg, ring.Latest, logger)
		streamHandler = hub
	}

	client := api.NewClient(cfg.Upstream.URL,
		api.WithTimeout(cfg.Upstream.Timeout),
		api.WithLogger(logger),
	)

	acquisition := poller.New(
		poller.Config{
			Interval: cfg.Tracker.PollInterval,
			Timeout:  cfg.Upstream.Timeout,
		},
		client,
		poller.PositionHandlerFunc(func(p model.Position) {
			ring.Append(p)
			if hub != nil {
				hub.HandlePosition(p)
			}
		}),
		logger,
	)

	svc := query.New(ring, query.Config{
		MaxPositions: cfg.Tracker.MaxPositions,
		PollInterval: cfg.Tracker.PollInterval,
	}, acquisition)

	srv := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		StaticDir:       cfg.Server.StaticDir,
		RateLimit:       cfg.Server.RateLimit,
		RateBurst:       cfg.Server.RateBurst,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, svc, streamHandler, logger)

	g, gctx := errgroup.WithContext(ctx)

	if err := acquisition.Start(gctx); err != nil {
		return fmt.Errorf("start poller: %w", err)
	}

	g.Go(func() error {
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		if hub != nil {
			hub.Close()
		}

		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), stopTimeout)
		defer cancel()
		return acquisition.Stop(stopCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("exited with error", "error", err)
		return err
	}

	logStored(logger, ring)
	return nil
}

func logStored(logger *slog.Logger, ring *store.Ring[model.Position]) {
	stats := ring.Stats()
	logger.Info("shutdown complete",
		"positions_stored", stats.Count,
		"total_appended", stats.TotalAppended,
		"total_evicted", stats.TotalEvicted,
	)
}
