package turnctx

import "testing"

func TestBuildChildConfig_InheritsUnsetFields(t *testing.T) {
	tc := &TurnContext{Model: "gpt-5-codex", ReasoningEffort: "medium", SandboxPolicy: "workspace-write", Cwd: "/repo"}
	cfg := tc.BuildChildConfig("", "", "", "", nil, nil)
	if cfg.Model != "gpt-5-codex" || cfg.ReasoningEffort != "medium" || cfg.SandboxPolicy != "workspace-write" || cfg.Cwd != "/repo" {
		t.Fatalf("expected inherited fields, got %+v", cfg)
	}
	if cfg.ApprovalPolicy != "never" {
		t.Fatalf("expected approval policy 'never' on spawned children, got %q", cfg.ApprovalPolicy)
	}
}

func TestBuildChildConfig_OverridesWin(t *testing.T) {
	tc := &TurnContext{Model: "gpt-5-codex"}
	cfg := tc.BuildChildConfig("gpt-5.1-codex-mini", "high", "read-only", "/other", []string{"search"}, nil)
	if cfg.Model != "gpt-5.1-codex-mini" {
		t.Fatalf("got %q", cfg.Model)
	}
	if cfg.SandboxPolicy != "read-only" {
		t.Fatalf("got %q", cfg.SandboxPolicy)
	}
}

func TestDetermineSessionID_NonGitFallback(t *testing.T) {
	id := DetermineSessionID(t.TempDir())
	if id == "" {
		t.Fatal("expected a non-empty session id")
	}
}

func TestGenerateSessionID_IsUnique(t *testing.T) {
	a := GenerateSessionID("base")
	b := GenerateSessionID("base")
	if a == b {
		t.Fatal("expected distinct session ids across calls")
	}
}
