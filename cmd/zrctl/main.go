package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/zrctl/internal/api"
	"github.com/zrctl/internal/cache"
	"github.com/zrctl/internal/config"
	"github.com/zrctl/internal/console"
	"github.com/zrctl/internal/logging"
	"github.com/zrctl/internal/monitor"
	"github.com/zrctl/internal/shell"
	"github.com/zrctl/internal/version"
	"github.com/zrctl/internal/zoomrooms"
)

func main() {
	var (
		configFile = flag.String("config", "config.yaml", "Configuration file path")
		debugMode  = flag.Bool("debug", false, "Enable debug logging")
		once       = flag.Bool("once", false, "Print one status snapshot as JSON and exit")
		showVer    = flag.Bool("version", false, "Show version and exit")
	)

	flag.Parse()

	if *showVer {
		fmt.Printf("zrctl %s\n", version.GetFullVersionInfo())
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *debugMode {
		cfg.Logging.Level = "debug"
	}

	if err := logging.Initialize(cfg.Logging.ToLogging()); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.GetLogger().Close()

	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logging.Info("Received signal, shutting down", "signal", sig.String())
		cancel()
	}()

	if err := run(ctx, cancel, cfg, *once); err != nil {
		logging.Error("zrctl stopped with error", logging.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, once bool) error {
	client, err := shell.New(shell.Config{
		Host:           cfg.Device.Host,
		Port:           cfg.Device.Port,
		Username:       cfg.Device.Username,
		Password:       cfg.Device.Password,
		KnownHosts:     cfg.Device.KnownHosts,
		ConnectTimeout: cfg.Device.ConnectTimeout,
		ReadTimeout:    cfg.Device.ReadTimeout,
		IdleTimeout:    cfg.Device.IdleTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create shell client: %w", err)
	}
	defer client.Close()

	exec := zoomrooms.NewExecutor(client, zoomrooms.ExecutorConfig{
		MaxAttempts: cfg.Protocol.MaxAttempts,
		RetryDelay:  cfg.Protocol.RetryDelay,
	})
	session := zoomrooms.NewSession(exec, zoomrooms.SessionConfig{
		PollAttempts: cfg.Protocol.StatusPollAttempts,
		PollDelay:    cfg.Protocol.StatusPollDelay,
	})
	aggregator := zoomrooms.NewAggregator(session)

	var snapshots cache.Cache
	if cfg.Cache.Enabled {
		bc, err := cache.New(cache.Config{MaxMemoryMB: cfg.Cache.MaxMemoryMB})
		if err != nil {
			return fmt.Errorf("failed to open snapshot cache: %w", err)
		}
		defer bc.Close()
		snapshots = bc
	}

	monCfg := monitor.Config{Device: cfg.Device.Host, TTL: cfg.Monitor.SnapshotTTL}
	if cfg.Monitor.Enabled && !once {
		monCfg.Interval = cfg.Monitor.Interval
	}
	poller := monitor.NewPoller(aggregator, snapshots, monCfg)

	if once {
		snap, err := poller.Refresh(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	logging.Info("Starting zrctl",
		append(logging.Host(cfg.Device.Host, cfg.Device.Port), "version", version.GetFullVersionInfo())...)

	poller.Start(ctx)
	defer poller.Stop()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.API.Enabled {
		server := api.New(session, poller, snapshots, cfg.API)
		g.Go(func() error {
			return server.ListenAndServe(gctx)
		})
	}

	if cfg.Console.Enabled {
		con := console.New(session, poller, cfg.Console)
		g.Go(func() error {
			err := con.Run(gctx)
			if cfg.Console.Listen == "" {
				// Leaving the local console ends the program.
				cancel()
			}
			return err
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logging.Info("zrctl stopped")
	return nil
}
