package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/talgya/mini-market/internal/cognition"
	"github.com/talgya/mini-market/internal/config"
	"github.com/talgya/mini-market/internal/engine"
	"github.com/talgya/mini-market/internal/journal"
	"github.com/talgya/mini-market/internal/llm"
	"github.com/talgya/mini-market/internal/metrics"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation",
	Long: `Run the simulation for --ticks ticks (0 = until interrupted).

Agents are driven by the configured language model when an API key is
available (llm.api_key, MARKETSIM_LLM_API_KEY, ANTHROPIC_API_KEY or
DEEPSEEK_API_KEY), and by built-in routines otherwise.`,
	RunE: runSimulation,
}

func init() {
	f := runCmd.Flags()
	f.Int("ticks", 24, "number of ticks to run, 0 = until interrupted")
	f.Duration("interval", 0, "wall time between ticks")
	f.Int("concurrency", cognition.DefaultWidth, "concurrent reasoning-service requests")
	f.String("scenario", "", "scenario file (YAML or JSON), overrides the config")
	f.String("journal-sqlite", "", "append events to this SQLite database")
	f.String("journal-dir", "", "append events to hourly zstd JSONL files in this directory")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")

	for _, name := range []string{"ticks", "interval", "concurrency", "scenario", "journal-sqlite", "journal-dir", "metrics-addr"} {
		_ = viper.BindPFlag(flagKey(name), f.Lookup(name))
	}
}

// flagKey maps a flag name to its viper key.
func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	logger, err := setupLogging()
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Metrics ───────────────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewCollector("marketsim", reg)
	if addr := viper.GetString("metrics_addr"); addr != "" {
		srv := serveMetrics(addr, reg)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// ── Decisions ─────────────────────────────────────────────────────
	var decider engine.Decider = cognition.Automaton{}
	if client := llm.NewClient(cfg.LLM); client != nil {
		decider = cognition.NewOrchestrator(client, cognition.Options{
			Width:   cfg.Simulation.Concurrency,
			Timeout: cfg.Simulation.CallTimeout,
			Metrics: m,
			Logger:  logger,
		})
		slog.Info("reasoning service enabled", "provider", client.Provider(), "model", client.Model(), "concurrency", cfg.Simulation.Concurrency)
	} else {
		slog.Info("no API key configured, agents follow built-in routines")
	}

	// ── Journal ───────────────────────────────────────────────────────
	j, err := openJournal(cfg.Journal, m, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := j.Close(); err != nil {
			slog.Warn("journal close failed", "error", err)
		}
	}()

	// ── Simulation ────────────────────────────────────────────────────
	opts := engine.OptionsFromConfig(cfg.Simulation)
	opts.Decider = decider
	opts.Metrics = m
	opts.Logger = logger
	opts.OnEvent = j.Record

	sim, err := engine.NewSimulation(cfg.Scenario, opts)
	if err != nil {
		return fmt.Errorf("build simulation: %w", err)
	}
	j.Start(len(sim.Agents), sim.Places.Len())
	slog.Info("simulation ready",
		"run_id", j.RunID,
		"agents", len(sim.Agents),
		"locations", sim.Places.Len(),
		"campaigns", len(sim.Clock.Campaigns),
		"time", sim.Clock.Now().String(),
	)

	eng := engine.NewEngine(sim)
	eng.MaxTicks = uint64(cfg.Simulation.Ticks)
	eng.Interval = cfg.Simulation.Interval
	eng.OnTick = func(engine.TickReport) { j.Flush() }

	runErr := eng.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
		return runErr
	}
	if runErr != nil {
		slog.Info("simulation interrupted", "ticks", eng.Tick)
	}

	sum := sim.Summary()
	j.Finish(sim.LastTick, sum.String())
	report(sim, sum)
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		slog.Info("metrics server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server error", "error", err)
		}
	}()
	return srv
}

func openJournal(cfg config.JournalConfig, m *metrics.Collector, logger *slog.Logger) (*journal.Journal, error) {
	var sinks []journal.Sink
	if cfg.SQLitePath != "" {
		db, err := journal.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, db)
		slog.Info("journal opened", "sink", db.Name(), "path", cfg.SQLitePath)
	}
	if cfg.Dir != "" {
		z := journal.NewZstdJSONL(cfg.Dir, "events")
		sinks = append(sinks, z)
		slog.Info("journal opened", "sink", z.Name(), "dir", cfg.Dir)
	}
	return journal.New(journal.NewRunID(), m, logger, sinks...), nil
}

func report(sim *engine.Simulation, sum engine.Summary) {
	slog.Info("simulation finished",
		"ticks", sum.Tick,
		"time", sum.Time,
		"avg_energy", fmt.Sprintf("%.1f", sum.AvgEnergy),
		"total_money", fmt.Sprintf("%.2f", sum.TotalMoney),
		"total_sales", fmt.Sprintf("%.2f", sum.TotalSales),
		"top_location", sum.TopLocation,
	)
	for _, a := range sim.Agents {
		slog.Info("agent",
			"name", a.Name,
			"energy", fmt.Sprintf("%.1f", a.Energy),
			"money", fmt.Sprintf("%.2f", a.Money),
			"location", a.CurrentLocation,
			"items", a.Inventory.Total(),
			"memories", a.Memory.Len(),
			"last_action", a.LastAction,
		)
	}
}
