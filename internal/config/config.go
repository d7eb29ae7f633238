// Package config loads and validates runner configuration from YAML, with
// environment overrides for deployment-specific values.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tiger/exercise-trace-monitor/internal/pipeline"
	"github.com/tiger/exercise-trace-monitor/internal/smt"
)

// SolverConfig configures the external SMT solver subprocess.
type SolverConfig struct {
	Path             string   `yaml:"path" json:"path"`
	Args             []string `yaml:"args" json:"args"`
	UnrollBound      int      `yaml:"unroll_bound" json:"unroll_bound"`
	TimeoutMillis    int      `yaml:"timeout_ms" json:"timeout_ms"`
	CacheSize        int      `yaml:"cache_size" json:"cache_size"`
	BreakerThreshold int      `yaml:"breaker_threshold" json:"breaker_threshold"`
	BreakerCooldownS int      `yaml:"breaker_cooldown_s" json:"breaker_cooldown_s"`
}

// Config is the top-level runner configuration.
type Config struct {
	SamplingRate  int          `yaml:"sampling_rate" json:"sampling_rate"`
	MaxBufferSize int          `yaml:"max_buffer_size" json:"max_buffer_size"`
	Workers       int          `yaml:"workers" json:"workers"`
	Solver        SolverConfig `yaml:"solver" json:"solver"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		SamplingRate:  50,
		MaxBufferSize: 512,
		Workers:       4,
		Solver: SolverConfig{
			Path:             "z3",
			Args:             []string{"-in"},
			UnrollBound:      8,
			TimeoutMillis:    2000,
			CacheSize:        1024,
			BreakerThreshold: 5,
			BreakerCooldownS: 30,
		},
	}
}

// Load reads YAML from path, applies environment overrides, and validates.
// An empty path loads defaults with overrides applied.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		dec := yaml.NewDecoder(strings.NewReader(string(raw)))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate runs the typed checks and the JSON schema over the configuration.
// Both must pass.
func (c Config) Validate() error {
	if c.SamplingRate < 1 {
		return fmt.Errorf("sampling_rate must be >= 1, got %d", c.SamplingRate)
	}
	if c.MaxBufferSize < 1 {
		return fmt.Errorf("max_buffer_size must be >= 1, got %d", c.MaxBufferSize)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if strings.TrimSpace(c.Solver.Path) == "" {
		return fmt.Errorf("solver.path is required")
	}
	if c.Solver.UnrollBound < 1 {
		return fmt.Errorf("solver.unroll_bound must be >= 1, got %d", c.Solver.UnrollBound)
	}
	if c.Solver.TimeoutMillis < 1 {
		return fmt.Errorf("solver.timeout_ms must be >= 1, got %d", c.Solver.TimeoutMillis)
	}
	if c.Solver.CacheSize < 1 {
		return fmt.Errorf("solver.cache_size must be >= 1, got %d", c.Solver.CacheSize)
	}
	if c.Solver.BreakerThreshold < 1 {
		return fmt.Errorf("solver.breaker_threshold must be >= 1, got %d", c.Solver.BreakerThreshold)
	}
	if c.Solver.BreakerCooldownS < 1 {
		return fmt.Errorf("solver.breaker_cooldown_s must be >= 1, got %d", c.Solver.BreakerCooldownS)
	}
	return validateSchema(c)
}

// Pipeline converts to the pipeline settings.
func (c Config) Pipeline() pipeline.Config {
	return pipeline.Config{
		SamplingRate:  c.SamplingRate,
		MaxBufferSize: c.MaxBufferSize,
		Workers:       c.Workers,
	}
}

// SolverBackend converts to the solver backend settings.
func (c Config) SolverBackend() smt.Config {
	return smt.Config{
		SolverPath:       c.Solver.Path,
		SolverArgs:       c.Solver.Args,
		UnrollBound:      c.Solver.UnrollBound,
		Timeout:          time.Duration(c.Solver.TimeoutMillis) * time.Millisecond,
		CacheSize:        c.Solver.CacheSize,
		BreakerThreshold: c.Solver.BreakerThreshold,
		BreakerCooldown:  time.Duration(c.Solver.BreakerCooldownS) * time.Second,
	}
}

// Render returns the effective configuration as YAML, for the check command.
func (c Config) Render() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("render config: %w", err)
	}
	return string(out), nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.SamplingRate = envInt("ETM_SAMPLING_RATE", cfg.SamplingRate)
	cfg.MaxBufferSize = envInt("ETM_MAX_BUFFER_SIZE", cfg.MaxBufferSize)
	cfg.Workers = envInt("ETM_WORKERS", cfg.Workers)
	cfg.Solver.Path = envString("ETM_SOLVER_PATH", cfg.Solver.Path)
	cfg.Solver.UnrollBound = envInt("ETM_SOLVER_UNROLL_BOUND", cfg.Solver.UnrollBound)
	cfg.Solver.TimeoutMillis = envInt("ETM_SOLVER_TIMEOUT_MS", cfg.Solver.TimeoutMillis)
}

func envString(name, fallback string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(name string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func validateSchema(c Config) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config for schema validation: %w", err)
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("unmarshal config for schema validation: %w", err)
	}
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("config schema validation: %w", err)
	}
	return nil
}
