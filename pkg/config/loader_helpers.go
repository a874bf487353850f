package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// loadAndMerge loads a YAML file and merges it into cfg. A field in the
// file overwrites cfg only when its value is non-zero (a non-empty
// string, a non-zero number, a non-nil list or map), so an explicit
// empty string or 0 leaves cfg untouched. The exceptions are
// registry.disable_watch and spawn.disable_collab_below_remaining_depth,
// whose presence is detected via the raw map so an explicit false or 0
// does overwrite.
func loadAndMerge(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	mergeConfigs(cfg, &override, raw)
	return nil
}

func mergeConfigs(base, override *Config, raw map[string]any) {
	if override == nil {
		return
	}

	if override.Registry.UserDir != "" {
		base.Registry.UserDir = override.Registry.UserDir
	}
	if override.Registry.ProjectDirs != nil {
		base.Registry.ProjectDirs = append([]string{}, override.Registry.ProjectDirs...)
	}
	if boolFieldSet(raw, "registry", "disable_watch") {
		base.Registry.DisableWatch = override.Registry.DisableWatch
	}

	if override.Spawn.MaxDepth != 0 {
		base.Spawn.MaxDepth = override.Spawn.MaxDepth
	}
	if boolFieldSet(raw, "spawn", "disable_collab_below_remaining_depth") {
		base.Spawn.DisableCollabBelow = override.Spawn.DisableCollabBelow
	}

	if override.Wait.DefaultTimeoutMs != 0 {
		base.Wait.DefaultTimeoutMs = override.Wait.DefaultTimeoutMs
	}
	if override.Wait.MinTimeoutMs != 0 {
		base.Wait.MinTimeoutMs = override.Wait.MinTimeoutMs
	}
	if override.Wait.MaxTimeoutMs != 0 {
		base.Wait.MaxTimeoutMs = override.Wait.MaxTimeoutMs
	}

	if override.Models.Default != "" {
		base.Models.Default = override.Models.Default
	}
	if override.Models.DefaultEffort != "" {
		base.Models.DefaultEffort = override.Models.DefaultEffort
	}
	if override.Models.SupportedEfforts != nil {
		for model, efforts := range override.Models.SupportedEfforts {
			base.Models.SupportedEfforts[model] = append([]string{}, efforts...)
		}
	}

	if override.Sandbox.DefaultPolicy != "" {
		base.Sandbox.DefaultPolicy = override.Sandbox.DefaultPolicy
	}
	if override.Sandbox.ReadOnlyPolicy != "" {
		base.Sandbox.ReadOnlyPolicy = override.Sandbox.ReadOnlyPolicy
	}

	if override.Budget.DefaultTokenBudget != "" {
		base.Budget.DefaultTokenBudget = override.Budget.DefaultTokenBudget
	}
	if override.Budget.DefaultCostBudget != "" {
		base.Budget.DefaultCostBudget = override.Budget.DefaultCostBudget
	}

	if override.Observability.LogDir != "" {
		base.Observability.LogDir = override.Observability.LogDir
	}
	if override.Observability.MinLevel != "" {
		base.Observability.MinLevel = override.Observability.MinLevel
	}
}

// boolFieldSet reports whether path is present in the raw YAML document,
// used to distinguish an explicit `false`/`0` override from a field the
// file never mentioned.
func boolFieldSet(raw map[string]any, path ...string) bool {
	if len(path) == 0 || raw == nil {
		return false
	}
	current := any(raw)
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return false
		}
		val, ok := m[key]
		if !ok {
			return false
		}
		current = val
	}
	return true
}

// applyEnvOverrides applies SUBAGENTKIT_* environment variable overrides,
// taking precedence over both defaults and file-based config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SUBAGENTKIT_MODEL"); v != "" {
		cfg.Models.Default = v
	}
	if v := os.Getenv("SUBAGENTKIT_REASONING_EFFORT"); v != "" {
		cfg.Models.DefaultEffort = v
	}
	if v := os.Getenv("SUBAGENTKIT_SANDBOX_POLICY"); v != "" {
		cfg.Sandbox.DefaultPolicy = v
	}
	if v := os.Getenv("SUBAGENTKIT_REGISTRY_USER_DIR"); v != "" {
		cfg.Registry.UserDir = v
	}
	if v := os.Getenv("SUBAGENTKIT_LOG_DIR"); v != "" {
		cfg.Observability.LogDir = v
	}
	if v := os.Getenv("SUBAGENTKIT_LOG_LEVEL"); v != "" {
		cfg.Observability.MinLevel = v
	}
	if v := os.Getenv("SUBAGENTKIT_MAX_SPAWN_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Spawn.MaxDepth = n
		}
	}
	if v := os.Getenv("SUBAGENTKIT_WAIT_DEFAULT_TIMEOUT_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Wait.DefaultTimeoutMs = n
		}
	}
	if v := os.Getenv("SUBAGENTKIT_TOKEN_BUDGET"); v != "" {
		cfg.Budget.DefaultTokenBudget = v
	}
	if v := os.Getenv("SUBAGENTKIT_COST_BUDGET"); v != "" {
		cfg.Budget.DefaultCostBudget = v
	}
	if raw := os.Getenv("SUBAGENTKIT_REGISTRY_PROJECT_DIRS"); raw != "" {
		cfg.Registry.ProjectDirs = splitAndTrim(raw, ",")
	}
}

func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
