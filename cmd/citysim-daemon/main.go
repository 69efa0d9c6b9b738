package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/andrescamacho/citysim-go/internal/adapters/cli"
	grpcadapter "github.com/andrescamacho/citysim-go/internal/adapters/grpc"
	"github.com/andrescamacho/citysim-go/internal/adapters/metrics"
	"github.com/andrescamacho/citysim-go/internal/adapters/scenario"
	"github.com/andrescamacho/citysim-go/internal/adapters/stream"
	"github.com/andrescamacho/citysim-go/internal/application/logging"
	"github.com/andrescamacho/citysim-go/internal/application/simulation"
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
	"github.com/andrescamacho/citysim-go/internal/infrastructure/config"
	"github.com/andrescamacho/citysim-go/internal/infrastructure/pidfile"
	"github.com/andrescamacho/citysim-go/pkg/utils"
)

func main() {
	// Parse command-line flags
	configFlag := flag.String("config", "", "Path to config file")
	scenarioFlag := flag.String("scenario", "", "Scenario to play (overrides daemon.scenario)")
	flag.Parse()

	fmt.Println("citysim daemon v0.1.0")
	fmt.Println("=====================")

	// Load configuration
	fmt.Println("Loading configuration...")
	cfg := config.MustLoadConfig(*configFlag)
	if *scenarioFlag != "" {
		cfg.Daemon.Scenario = *scenarioFlag
	}

	// Acquire PID file lock to prevent multiple instances
	fmt.Printf("Acquiring PID file lock: %s\n", cfg.Daemon.PIDFile)
	pf := pidfile.New(cfg.Daemon.PIDFile)
	if err := pf.Acquire(); err != nil {
		log.Fatalf("Failed to acquire PID file lock: %v", err)
	}
	defer func() {
		if err := pf.Release(); err != nil {
			log.Printf("Warning: failed to release PID file: %v", err)
		}
	}()

	if err := run(cfg); err != nil {
		log.Printf("Fatal error: %v", err)
		_ = pf.Release()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Scenario and engine
	sc := &scenario.Scenario{Version: scenario.FormatVersion, Name: "empty-city"}
	if cfg.Daemon.Scenario != "" {
		loaded, err := scenario.Load(cfg.Daemon.Scenario)
		if err != nil {
			return err
		}
		sc = loaded
	}
	runID := utils.GenerateRunID(sc.Name)
	sim, err := cli.BuildSimulation(cfg, sc, runID)
	if err != nil {
		return err
	}
	fmt.Printf("Run %s: %s (%d scheduled events)\n", runID, sc.Name, sim.Schedule.Len())

	// 2. Logging
	clock := shared.NewRealClock()
	logger, logCloser, err := cli.NewLogger(cfg.Logging, runID, clock)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	// 3. Journal database and export
	session, err := cli.OpenJournal(ctx, cfg, cli.JournalOptions{
		Database:   cfg.Journal.Enabled,
		ExportPath: cfg.Journal.ExportPath,
	}, runID, sc.Name, sim.Engine.Catalog().Version(), clock)
	if err != nil {
		return err
	}
	if session.Logger != nil {
		logger = logging.FanOut(logger, session.Logger)
		fmt.Printf("Journal: %s database\n", cfg.Database.Type)
	}
	ctx = logging.WithLogger(ctx, logger)
	sinks := append([]simulation.ReportSink(nil), session.Sinks...)

	// 4. Metrics
	mux := http.NewServeMux()
	serveHTTP := false
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		collector := metrics.NewSimulationMetricsCollector(cfg.Metrics.Namespace)
		if err := collector.Register(); err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		sinks = append(sinks, collector)
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		serveHTTP = true
		fmt.Printf("Metrics: http://%s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// 5. Websocket stream
	if cfg.Stream.Enabled {
		hub := stream.NewHub(cfg.Stream.BufferSize, cfg.Stream.WriteTimeout, logger)
		go hub.Run(ctx)
		sinks = append(sinks, hub)
		mux.Handle(cfg.Stream.Path, hub)
		serveHTTP = true
		fmt.Printf("Stream: ws://%s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Stream.Path)
	}

	var httpServer *http.Server
	httpErr := make(chan error, 1)
	if serveHTTP {
		httpServer = &http.Server{
			Addr:              net.JoinHostPort(cfg.Metrics.Host, strconv.Itoa(cfg.Metrics.Port)),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				httpErr <- err
			}
		}()
	}

	// 6. gRPC health
	healthDone := make(chan error, 1)
	if cfg.Health.Enabled {
		healthServer, err := grpcadapter.NewHealthServer(cfg.Health.Address, cfg.Health.ShutdownTimeout)
		if err != nil {
			return err
		}
		sinks = append(sinks, healthServer)
		go func() { healthDone <- healthServer.Serve(ctx) }()
		fmt.Printf("Health: %s\n", healthServer.Addr())
	} else {
		close(healthDone)
	}

	// 7. Tick loop
	runner := simulation.NewRunner(sim.Engine, cfg.Simulation.TicksPerSecond, sinks...)
	runner.SetSource(sim.Schedule)

	fmt.Printf("Running at %g ticks/s. Press Ctrl-C to stop.\n", cfg.Simulation.TicksPerSecond)
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	go func() {
		select {
		case err := <-httpErr:
			logger.Log(logging.LevelError, fmt.Sprintf("HTTP server failed: %v", err), nil)
			cancelRun()
		case <-runCtx.Done():
		}
	}()

	started := time.Now()
	last, runErr := runner.Run(runCtx, cfg.Daemon.MaxTicks)
	stop()

	// 8. Shutdown
	fmt.Println("Shutting down...")
	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Health.ShutdownTimeout)
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Warning: HTTP shutdown: %v", err)
		}
		cancel()
	}
	if err := <-healthDone; err != nil {
		log.Printf("Warning: health server: %v", err)
	}

	var ticks uint64
	if last != nil {
		ticks = last.Tick
	}
	if err := session.Close(context.Background(), ticks, runErr); err != nil {
		log.Printf("Warning: failed to close journal: %v", err)
	}

	cli.PrintRunSummary(os.Stdout, runID, last, time.Since(started))
	return runErr
}
