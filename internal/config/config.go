// Package config loads simulation settings and scenarios from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/mini-market/internal/llm"
)

// Config is the full runner configuration.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	LLM        llm.Options      `yaml:"llm"`
	Journal    JournalConfig    `yaml:"journal"`

	// ScenarioFile is read when Scenario is not given inline. Relative
	// paths resolve against the config file's directory.
	ScenarioFile string    `yaml:"scenario_file"`
	Scenario     *Scenario `yaml:"scenario"`
}

// SimulationConfig tunes the tick driver.
type SimulationConfig struct {
	TickMinutes        int           `yaml:"tick_minutes"`
	StartHour          int           `yaml:"start_hour"`
	PlanningHour       int           `yaml:"planning_hour"`
	Concurrency        int           `yaml:"concurrency"`
	CallTimeout        time.Duration `yaml:"call_timeout"`
	MemoryMaxEvents    int           `yaml:"memory_max_events"`
	MaxReflections     int           `yaml:"max_reflections"`
	EventLogMax        int           `yaml:"event_log_max"`
	ProximityThreshold float64       `yaml:"proximity_threshold"`

	// Runner settings.
	Ticks    int           `yaml:"ticks"`    // 0 = run until interrupted
	Interval time.Duration `yaml:"interval"` // wall time between ticks
}

// JournalConfig selects the outcome journals. Empty paths disable a sink.
type JournalConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
	Dir        string `yaml:"dir"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TickMinutes:        60,
			StartHour:          7,
			PlanningHour:       7,
			Concurrency:        5,
			CallTimeout:        30 * time.Second,
			MemoryMaxEvents:    100,
			MaxReflections:     10,
			EventLogMax:        100,
			ProximityThreshold: 1.0,
			Ticks:              24,
		},
		LLM: llm.Options{
			Provider:          llm.ProviderAnthropic,
			MaxTokens:         1000,
			Temperature:       0.7,
			Timeout:           30 * time.Second,
			RequestsPerMinute: 60,
			Burst:             5,
		},
	}
}

// Load reads a YAML config file. Settings absent from the file keep their
// defaults; a missing scenario falls back to the built-in one.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if cfg.Scenario == nil && cfg.ScenarioFile != "" {
		p := cfg.ScenarioFile
		if !filepath.IsAbs(p) {
			p = filepath.Join(filepath.Dir(path), p)
		}
		sc, err := LoadScenario(p)
		if err != nil {
			return nil, err
		}
		cfg.Scenario = sc
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a YAML config document over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Finish applies defaults, resolves the scenario and validates.
func (c *Config) finish() error {
	applyDefaults(c)
	if c.Scenario == nil {
		sc, err := DefaultScenario()
		if err != nil {
			return err
		}
		c.Scenario = sc
	}
	c.Scenario.applyDefaults()
	return c.Validate()
}

// Resolve prepares a config built in code, such as Default(), for use.
func (c *Config) Resolve() error {
	return c.finish()
}

// applyDefaults sets default values for unset fields.
func applyDefaults(c *Config) {
	if c.Simulation.TickMinutes == 0 {
		c.Simulation.TickMinutes = 60
	}
	if c.Simulation.Concurrency == 0 {
		c.Simulation.Concurrency = 5
	}
	if c.Simulation.CallTimeout == 0 {
		c.Simulation.CallTimeout = 30 * time.Second
	}
	if c.Simulation.MemoryMaxEvents == 0 {
		c.Simulation.MemoryMaxEvents = 100
	}
	if c.Simulation.EventLogMax == 0 {
		c.Simulation.EventLogMax = 100
	}
	if c.Simulation.ProximityThreshold == 0 {
		c.Simulation.ProximityThreshold = 1.0
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = llm.ProviderAnthropic
	}
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = apiKeyFromEnv(c.LLM.Provider)
	}
}

// apiKeyFromEnv returns the conventional API key variable for provider.
func apiKeyFromEnv(provider string) string {
	switch provider {
	case llm.ProviderOpenAI:
		if k := os.Getenv("DEEPSEEK_API_KEY"); k != "" {
			return k
		}
		return os.Getenv("OPENAI_API_KEY")
	default:
		return os.Getenv("ANTHROPIC_API_KEY")
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	s := c.Simulation
	if s.TickMinutes < 0 {
		return fmt.Errorf("tick_minutes must be positive, got %d", s.TickMinutes)
	}
	if s.StartHour < 0 || s.StartHour > 23 {
		return fmt.Errorf("start_hour must be 0-23, got %d", s.StartHour)
	}
	if s.PlanningHour < 0 || s.PlanningHour > 23 {
		return fmt.Errorf("planning_hour must be 0-23, got %d", s.PlanningHour)
	}
	if s.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", s.Concurrency)
	}
	if s.MemoryMaxEvents < 1 || s.EventLogMax < 1 {
		return fmt.Errorf("memory_max_events and event_log_max must be at least 1")
	}
	if s.Ticks < 0 {
		return fmt.Errorf("ticks must not be negative, got %d", s.Ticks)
	}

	switch c.LLM.Provider {
	case llm.ProviderAnthropic, llm.ProviderOpenAI:
	default:
		return fmt.Errorf("invalid llm provider: %s (must be %s or %s)", c.LLM.Provider, llm.ProviderAnthropic, llm.ProviderOpenAI)
	}

	if c.Scenario != nil {
		if err := c.Scenario.Validate(); err != nil {
			return fmt.Errorf("scenario: %w", err)
		}
	}
	return nil
}
