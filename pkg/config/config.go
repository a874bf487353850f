package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/apimachinery/pkg/api/resource"
)

const (
	// DefaultModel is used when no model override reaches a thread's config.
	DefaultModel           = "gpt-5-codex"
	DefaultReasoningEffort = "medium"
	DefaultSandboxPolicy   = "workspace-write"
	DefaultApprovalPolicy  = "on-request"

	// MaxSpawnDepthCeiling bounds how deep Spawn.MaxDepth may be configured;
	// Validate rejects a configured value above it.
	MaxSpawnDepthCeiling = 5

	DefaultWaitTimeoutMs = 300_000
	MinWaitTimeoutMs     = 10_000
	MaxWaitTimeoutMs     = 1_800_000
)

// Config is the root configuration tree for this orchestration core.
type Config struct {
	Registry     RegistryConfig     `yaml:"registry"`
	Spawn        SpawnConfig        `yaml:"spawn"`
	Wait         WaitConfig         `yaml:"wait"`
	Models       ModelsConfig       `yaml:"models"`
	Sandbox      SandboxConfig      `yaml:"sandbox"`
	Budget       BudgetConfig       `yaml:"budget"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// RegistryConfig controls where role templates are discovered.
// Precedence is System < User < Project: later roots overwrite earlier ones
// that share a canonical stem, while two different stems declaring the same
// name are reported as a duplicate (see pkg/roleregistry).
type RegistryConfig struct {
	UserDir       string   `yaml:"user_dir"`
	ProjectDirs   []string `yaml:"project_dirs"`
	DisableWatch  bool     `yaml:"disable_watch"`
}

// SpawnConfig declares spawn_agent defaults and limits. The values are
// loaded and validated here; pkg/collabtools does not read them and
// enforces threadctl.MaxSpawnDepth directly.
type SpawnConfig struct {
	MaxDepth            int  `yaml:"max_depth"`
	DisableCollabBelow  int  `yaml:"disable_collab_below_remaining_depth"`
}

// WaitConfig declares the wait tool's timeout clamp. The values are
// loaded and validated here; the wait tool does not read them and clamps
// with its own constants.
type WaitConfig struct {
	DefaultTimeoutMs int64 `yaml:"default_timeout_ms"`
	MinTimeoutMs     int64 `yaml:"min_timeout_ms"`
	MaxTimeoutMs     int64 `yaml:"max_timeout_ms"`
}

// ModelsConfig declares the default model/effort and a table of known
// presets. spawn_agent does not consult this table; it validates against
// the preset table in pkg/collabtools.
type ModelsConfig struct {
	Default         string              `yaml:"default"`
	DefaultEffort   string              `yaml:"default_effort"`
	SupportedEfforts map[string][]string `yaml:"supported_efforts"`
}

// SandboxConfig declares the default sandbox policy and the policy a
// read_only spawn maps to. spawn_agent does not read it and maps
// read_only to "read-only" itself.
type SandboxConfig struct {
	DefaultPolicy  string `yaml:"default_policy"`
	ReadOnlyPolicy string `yaml:"read_only_policy"`
}

// BudgetConfig declares default per-thread token/cost ceilings. Quantity
// is k8s.io/apimachinery's arbitrary-precision decimal type, so budgets
// parse and compare the same way Kubernetes resource limits do.
type BudgetConfig struct {
	DefaultTokenBudget string `yaml:"default_token_budget"`
	DefaultCostBudget  string `yaml:"default_cost_budget"`
}

// ObservabilityConfig controls obslog output location. MinLevel is loaded
// but not applied: obslog has no level filtering.
type ObservabilityConfig struct {
	LogDir   string `yaml:"log_dir"`
	MinLevel string `yaml:"min_level"`
}

// DefaultConfig returns the built-in defaults before any file/env overrides.
func DefaultConfig() *Config {
	return &Config{
		Registry: RegistryConfig{},
		Spawn: SpawnConfig{
			MaxDepth:           MaxSpawnDepthCeiling,
			DisableCollabBelow: 1,
		},
		Wait: WaitConfig{
			DefaultTimeoutMs: DefaultWaitTimeoutMs,
			MinTimeoutMs:     MinWaitTimeoutMs,
			MaxTimeoutMs:     MaxWaitTimeoutMs,
		},
		Models: ModelsConfig{
			Default:       DefaultModel,
			DefaultEffort: DefaultReasoningEffort,
			SupportedEfforts: map[string][]string{
				"gpt-5-codex":          {"none", "low", "medium", "high", "xhigh"},
				"gpt-5.1-codex":        {"low", "medium", "high"},
				"gpt-5.1-codex-mini":   {"low", "medium", "high"},
				"gpt-5.1":              {"low", "medium", "high"},
				"o3":                   {"low", "medium", "high"},
			},
		},
		Sandbox: SandboxConfig{
			DefaultPolicy:  DefaultSandboxPolicy,
			ReadOnlyPolicy: "read-only",
		},
		Budget: BudgetConfig{
			DefaultTokenBudget: "",
			DefaultCostBudget:  "",
		},
		Observability: ObservabilityConfig{
			LogDir:   filepath.Join(".subagentkit", "logs"),
			MinLevel: "info",
		},
	}
}

// TokenBudgetQuantity parses BudgetConfig.DefaultTokenBudget, returning nil
// if unset. A malformed value is a configuration error, not a silent zero.
func (b BudgetConfig) TokenBudgetQuantity() (*resource.Quantity, error) {
	return parseOptionalQuantity(b.DefaultTokenBudget)
}

// CostBudgetQuantity parses BudgetConfig.DefaultCostBudget, returning nil
// if unset.
func (b BudgetConfig) CostBudgetQuantity() (*resource.Quantity, error) {
	return parseOptionalQuantity(b.DefaultCostBudget)
}

func parseOptionalQuantity(raw string) (*resource.Quantity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	q, err := resource.ParseQuantity(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing quantity %q: %w", raw, err)
	}
	return &q, nil
}

// Validate checks the configuration for internally-inconsistent values.
func (c *Config) Validate() error {
	if c.Spawn.MaxDepth <= 0 || c.Spawn.MaxDepth > MaxSpawnDepthCeiling {
		return fmt.Errorf("spawn.max_depth must be in [1, %d], got %d", MaxSpawnDepthCeiling, c.Spawn.MaxDepth)
	}
	if c.Wait.MinTimeoutMs <= 0 || c.Wait.MaxTimeoutMs < c.Wait.MinTimeoutMs {
		return fmt.Errorf("wait.min_timeout_ms/max_timeout_ms are inconsistent")
	}
	if c.Wait.DefaultTimeoutMs < c.Wait.MinTimeoutMs || c.Wait.DefaultTimeoutMs > c.Wait.MaxTimeoutMs {
		return fmt.Errorf("wait.default_timeout_ms must be within [min_timeout_ms, max_timeout_ms]")
	}
	if _, err := c.Budget.TokenBudgetQuantity(); err != nil {
		return err
	}
	if _, err := c.Budget.CostBudgetQuantity(); err != nil {
		return err
	}
	return nil
}

// Load reads the user config (~/.subagentkit/config.yaml) then the project
// config (./.subagentkit/config.yaml), each overlaid on DefaultConfig, then
// applies environment overrides. Missing files are not an error.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	if home != "" {
		userPath := filepath.Join(home, ".subagentkit", "config.yaml")
		if err := loadAndMerge(cfg, userPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading user config: %w", err)
		}
	}

	projectPath := filepath.Join(".", ".subagentkit", "config.yaml")
	if err := loadAndMerge(cfg, projectPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a single explicit file, overlaid on
// DefaultConfig, then applies environment overrides.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := loadAndMerge(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverridesForTest exposes env override logic for tests without file I/O.
func ApplyEnvOverridesForTest(cfg *Config) {
	applyEnvOverrides(cfg)
}
