package config

import "testing"

func TestMergeConfigsOnlyTouchesFieldsPresentInRaw(t *testing.T) {
	base := DefaultConfig()
	override := &Config{Models: ModelsConfig{Default: "custom/model"}}
	raw := map[string]any{
		"models": map[string]any{
			"default": "custom/model",
		},
	}

	mergeConfigs(base, override, raw)

	if base.Models.Default != "custom/model" {
		t.Fatalf("expected model override to apply, got %q", base.Models.Default)
	}
	if base.Spawn.MaxDepth != MaxSpawnDepthCeiling {
		t.Fatalf("unrelated field should remain at its default, got %d", base.Spawn.MaxDepth)
	}
}

func TestMergeConfigsRespectsExplicitFalseBoolOverride(t *testing.T) {
	base := DefaultConfig()
	base.Registry.DisableWatch = false
	override := &Config{}
	override.Registry.DisableWatch = true
	raw := map[string]any{
		"registry": map[string]any{
			"disable_watch": true,
		},
	}

	mergeConfigs(base, override, raw)

	if !base.Registry.DisableWatch {
		t.Fatal("expected explicit disable_watch: true to override the base value")
	}
}

func TestMergeConfigsIgnoresAbsentBoolField(t *testing.T) {
	base := DefaultConfig()
	base.Registry.DisableWatch = true
	override := &Config{}
	raw := map[string]any{}

	mergeConfigs(base, override, raw)

	if !base.Registry.DisableWatch {
		t.Fatal("absent field in raw should not reset the base value")
	}
}

func TestBoolFieldSet(t *testing.T) {
	raw := map[string]any{
		"spawn": map[string]any{
			"disable_collab_below_remaining_depth": 0,
		},
	}
	if !boolFieldSet(raw, "spawn", "disable_collab_below_remaining_depth") {
		t.Fatal("expected boolFieldSet to find the nested key even when its value is a zero value")
	}
	if boolFieldSet(raw, "spawn", "missing") {
		t.Fatal("expected boolFieldSet to report false for a missing key")
	}
	if boolFieldSet(nil, "spawn") {
		t.Fatal("expected boolFieldSet to report false for a nil raw map")
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(" a, b ,c", ",")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected split result: %#v", got)
	}
}

func TestApplyEnvOverridesSetsProjectDirsFromCSV(t *testing.T) {
	cfg := DefaultConfig()
	t.Setenv("SUBAGENTKIT_REGISTRY_PROJECT_DIRS", ".agents, .codex/.agents")
	applyEnvOverrides(cfg)

	if len(cfg.Registry.ProjectDirs) != 2 {
		t.Fatalf("expected 2 project dirs, got %#v", cfg.Registry.ProjectDirs)
	}
}
