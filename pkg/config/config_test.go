package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/odvcencio/subagentkit/pkg/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	if cfg.Models.Default == "" {
		t.Fatal("default model should be populated")
	}
	if cfg.Spawn.MaxDepth != config.MaxSpawnDepthCeiling {
		t.Fatalf("expected default max depth %d, got %d", config.MaxSpawnDepthCeiling, cfg.Spawn.MaxDepth)
	}
	if cfg.Wait.DefaultTimeoutMs < cfg.Wait.MinTimeoutMs || cfg.Wait.DefaultTimeoutMs > cfg.Wait.MaxTimeoutMs {
		t.Fatalf("default wait timeout %d out of [%d, %d]", cfg.Wait.DefaultTimeoutMs, cfg.Wait.MinTimeoutMs, cfg.Wait.MaxTimeoutMs)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadHierarchy(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()

	t.Setenv("HOME", home)
	t.Setenv("SUBAGENTKIT_MODEL", "")
	t.Setenv("SUBAGENTKIT_MAX_SPAWN_DEPTH", "")

	userCfgDir := filepath.Join(home, ".subagentkit")
	if err := os.MkdirAll(userCfgDir, 0o755); err != nil {
		t.Fatalf("mkdir user config: %v", err)
	}
	userCfg := "models:\n  default: user/model\n"
	if err := os.WriteFile(filepath.Join(userCfgDir, "config.yaml"), []byte(userCfg), 0o644); err != nil {
		t.Fatalf("write user config: %v", err)
	}

	projectCfgDir := filepath.Join(project, ".subagentkit")
	if err := os.MkdirAll(projectCfgDir, 0o755); err != nil {
		t.Fatalf("mkdir project config: %v", err)
	}
	projectCfg := "spawn:\n  max_depth: 3\n"
	if err := os.WriteFile(filepath.Join(projectCfgDir, "config.yaml"), []byte(projectCfg), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}

	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(project); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWD) })

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Models.Default != "user/model" {
		t.Fatalf("expected user config model override, got %q", cfg.Models.Default)
	}
	if cfg.Spawn.MaxDepth != 3 {
		t.Fatalf("expected project config to override max depth to 3, got %d", cfg.Spawn.MaxDepth)
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := "wait:\n  default_timeout_ms: 60000\n  min_timeout_ms: 10000\n  max_timeout_ms: 1800000\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Wait.DefaultTimeoutMs != 60000 {
		t.Fatalf("expected overridden default timeout, got %d", cfg.Wait.DefaultTimeoutMs)
	}
}

func TestValidateRejectsInconsistentWaitBounds(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Wait.MinTimeoutMs = 100000
	cfg.Wait.MaxTimeoutMs = 1000
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for inverted wait bounds")
	}
}

func TestValidateRejectsSpawnDepthAboveCeiling(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Spawn.MaxDepth = config.MaxSpawnDepthCeiling + 1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for spawn depth above ceiling")
	}
}

func TestBudgetQuantityParsing(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Budget.DefaultTokenBudget = "1000000"
	q, err := cfg.Budget.TokenBudgetQuantity()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q == nil {
		t.Fatal("expected a non-nil quantity")
	}
	if q.Value() != 1000000 {
		t.Fatalf("expected 1000000, got %d", q.Value())
	}
}

func TestBudgetQuantityUnsetReturnsNil(t *testing.T) {
	cfg := config.DefaultConfig()
	q, err := cfg.Budget.TokenBudgetQuantity()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q != nil {
		t.Fatal("expected nil quantity when unset")
	}
}

func TestBudgetQuantityRejectsMalformed(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Budget.DefaultCostBudget = "not-a-quantity"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for malformed cost budget")
	}
}

func TestEnvOverridesTakePrecedence(t *testing.T) {
	cfg := config.DefaultConfig()
	t.Setenv("SUBAGENTKIT_MODEL", "env/model")
	t.Setenv("SUBAGENTKIT_MAX_SPAWN_DEPTH", "2")
	config.ApplyEnvOverridesForTest(cfg)

	if cfg.Models.Default != "env/model" {
		t.Fatalf("expected env override for model, got %q", cfg.Models.Default)
	}
	if cfg.Spawn.MaxDepth != 2 {
		t.Fatalf("expected env override for max depth, got %d", cfg.Spawn.MaxDepth)
	}
}
