package toolpolicy

import "testing"

func TestIsEnabled_LiteralAllow(t *testing.T) {
	allow := Normalize([]string{"wait", "close_agent"})
	if !IsEnabled("wait", allow, nil) {
		t.Fatal("expected wait to be enabled")
	}
	if IsEnabled("spawn_agent", allow, nil) {
		t.Fatal("expected spawn_agent to be disabled")
	}
}

func TestIsEnabled_LiteralDeny(t *testing.T) {
	deny := Normalize([]string{"spawn_agent"})
	if IsEnabled("spawn_agent", nil, deny) {
		t.Fatal("expected spawn_agent to be denied")
	}
	if !IsEnabled("wait", nil, deny) {
		t.Fatal("expected wait to remain enabled")
	}
}

func TestIsEnabled_GlobAllow(t *testing.T) {
	allow := Normalize([]string{"mcp*", "w?it"})
	if !IsEnabled("mcp__server__tool", allow, nil) {
		t.Fatal("expected mcp* glob to match")
	}
	if !IsEnabled("wait", allow, nil) {
		t.Fatal("expected w?it glob to match wait")
	}
	if IsEnabled("close_agent", allow, nil) {
		t.Fatal("expected close_agent not to match either glob")
	}
}

func TestIsEnabled_DenyWinsOverAllow(t *testing.T) {
	allow := Normalize([]string{"mcp*"})
	deny := Normalize([]string{"mcp__dangerous__tool"})
	if IsEnabled("mcp__dangerous__tool", allow, deny) {
		t.Fatal("expected deny to override allow for an exact match")
	}
	if !IsEnabled("mcp__safe__tool", allow, deny) {
		t.Fatal("expected other mcp* tools to remain enabled")
	}
}

func TestIsEnabled_CaseSensitive(t *testing.T) {
	allow := Normalize([]string{"wait", "mcp*"})
	if IsEnabled("Wait", allow, nil) {
		t.Fatal("expected case-sensitive mismatch to be disabled")
	}
	if IsEnabled("MCP__tool", allow, nil) {
		t.Fatal("expected case-sensitive glob mismatch to be disabled")
	}
}

func TestIsEnabled_NoAllowListMeansAllowAllExceptDeny(t *testing.T) {
	deny := Normalize([]string{"close_agent"})
	if !IsEnabled("anything_at_all", nil, deny) {
		t.Fatal("expected absent allow list to allow non-denied tools")
	}
	if IsEnabled("close_agent", nil, deny) {
		t.Fatal("expected close_agent to remain denied")
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize([]string{" wait ", "", "  ", "close_agent", "wait"})
	want := []string{"wait", "close_agent"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestNormalize_EmptyBecomesNil(t *testing.T) {
	if got := Normalize([]string{"", "   "}); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	if got := Normalize(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
