package roletemplate

import "testing"

const sampleTemplate = `---
description: "Explores the codebase read-only."
model: gpt-5-codex
color: blue
read_only: true
tools: ["search", "file_read"]
agent_names:
  - name: deep
    description: "A deeper, more thorough explorer persona."
---
Investigate the repository and report findings.

<!-- agent_name: deep -->
Investigate exhaustively, reading every related file before concluding.
`

func TestParse_RoundTrip(t *testing.T) {
	def, err := Parse("/roles/explorer.md", "explorer", sampleTemplate, ScopeRepo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.Name != "explorer" {
		t.Fatalf("expected stem-derived name, got %q", def.Name)
	}
	if def.Description == "" {
		t.Fatal("expected description")
	}
	if !def.ReadOnly {
		t.Fatal("expected read_only true")
	}
	if def.Color != ColorBlue {
		t.Fatalf("expected blue, got %q", def.Color)
	}
	if def.DefaultInstructions == "" {
		t.Fatal("expected non-empty default instructions")
	}
	persona, ok := def.NamedPersonas["deep"]
	if !ok {
		t.Fatal("expected persona 'deep'")
	}
	if persona.Instructions == "" {
		t.Fatal("expected non-empty persona instructions")
	}
	if err := def.Validate(); err != nil {
		t.Fatalf("expected valid role definition: %v", err)
	}
}

func TestParse_MissingAgentNameBlock(t *testing.T) {
	const broken = `---
description: "Strict role."
agent_names:
  - name: strict
    description: "A strict persona."
---
Default instructions here.
`
	_, err := Parse("/roles/strict.md", "strict", broken, ScopeRepo)
	if err == nil {
		t.Fatal("expected parse error for missing agent_name block")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	want := `invalid agent_names: missing agent_name block for "strict"`
	if pe.Reason != want {
		t.Fatalf("got %q, want %q", pe.Reason, want)
	}
}

func TestParse_OrphanAgentNameBlock(t *testing.T) {
	const broken = `---
description: "Role with an orphan block."
---
Default instructions here.

<!-- agent_name: ghost -->
Nobody declared this persona.
`
	_, err := Parse("/roles/ghost.md", "ghost", broken, ScopeRepo)
	if err == nil {
		t.Fatal("expected parse error for orphan agent_name block")
	}
}

func TestParse_NoFrontmatterFallsBackToDefaultInstructions(t *testing.T) {
	def, err := Parse("/roles/legacy.md", "legacy", "Just do the thing.\n", ScopeUser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.DefaultInstructions != "Just do the thing." {
		t.Fatalf("got %q", def.DefaultInstructions)
	}
}

func TestParse_MissingDescriptionRejected(t *testing.T) {
	const broken = `---
model: gpt-5-codex
---
Default instructions.
`
	_, err := Parse("/roles/nodesc.md", "nodesc", broken, ScopeRepo)
	if err == nil {
		t.Fatal("expected error for missing description")
	}
}

func TestIsValidStem(t *testing.T) {
	cases := map[string]bool{
		"worker":      true,
		"bug-hunter":  true,
		"bug_hunter":  true,
		"":            false,
		"Worker":      false,
		"worker!":     false,
		"worker 123":  false,
	}
	for in, want := range cases {
		if got := IsValidStem(in); got != want {
			t.Errorf("IsValidStem(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCanonicalKey_HyphenUnderscoreEquivalence(t *testing.T) {
	if CanonicalKey("foo-bar") != CanonicalKey("foo_bar") {
		t.Fatal("expected hyphen and underscore variants to canonicalise identically")
	}
}

func TestScope_Rank(t *testing.T) {
	if ScopeRepo.Rank() >= ScopeUser.Rank() || ScopeUser.Rank() >= ScopeSystem.Rank() {
		t.Fatal("expected Repo < User < System rank ordering")
	}
}
