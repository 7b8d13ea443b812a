package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/talgya/mini-market/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "marketsim",
	Short: "marketsim - tick-driven consumer simulation of a small market town",
	Long: `marketsim simulates consumers living in a small town. Every tick the
agents decide what to do (buy, move, rest, eat, work or chat), either by
asking a language model or with built-in routines, and the engine resolves
those decisions against shops, prices, campaigns and energy.

Example:
  marketsim run --ticks 48 --journal-sqlite run.db`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initViper)

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: built-in scenario and settings)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")
	_ = viper.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("log_format", pf.Lookup("log-format"))

	rootCmd.AddCommand(runCmd, scenarioCmd, versionCmd)
}

func initViper() {
	viper.SetEnvPrefix("MARKETSIM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("llm.api_key")
	_ = viper.BindEnv("llm.provider")
	_ = viper.BindEnv("llm.model")
	_ = viper.BindEnv("llm.base_url")
}

// loadConfig reads --config (or the defaults) and applies flag and
// MARKETSIM_* environment overrides.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}

	if viper.IsSet("ticks") {
		cfg.Simulation.Ticks = viper.GetInt("ticks")
	}
	if viper.IsSet("interval") {
		cfg.Simulation.Interval = viper.GetDuration("interval")
	}
	if viper.IsSet("concurrency") {
		cfg.Simulation.Concurrency = viper.GetInt("concurrency")
	}
	if viper.IsSet("journal_sqlite") {
		cfg.Journal.SQLitePath = viper.GetString("journal_sqlite")
	}
	if viper.IsSet("journal_dir") {
		cfg.Journal.Dir = viper.GetString("journal_dir")
	}
	if v := viper.GetString("llm.provider"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := viper.GetString("llm.model"); v != "" {
		cfg.LLM.Model = v
	}
	if v := viper.GetString("llm.base_url"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := viper.GetString("llm.api_key"); v != "" {
		cfg.LLM.APIKey = v
	}
	if viper.IsSet("scenario") {
		sc, err := config.LoadScenario(viper.GetString("scenario"))
		if err != nil {
			return nil, err
		}
		cfg.Scenario = sc
	}

	if err := cfg.Resolve(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// setupLogging installs the default slog logger.
func setupLogging() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log_level"))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", viper.GetString("log_level"))
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch viper.GetString("log_format") {
	case "json":
		h = slog.NewJSONHandler(os.Stdout, opts)
	case "text", "":
		h = slog.NewTextHandler(os.Stdout, opts)
	default:
		return nil, fmt.Errorf("invalid log format %q (must be text or json)", viper.GetString("log_format"))
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger, nil
}
