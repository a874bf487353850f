package statusobserver

import (
	"strings"
	"testing"
	"time"

	"github.com/odvcencio/subagentkit/pkg/threadctl"
)

func TestFormat_IncludesVerbAndPreview(t *testing.T) {
	status := threadctl.AgentStatus{Kind: threadctl.StatusErrored, Message: "  boom   went   the   thing   "}
	msg := Format("worker", threadctl.ThreadId("t1"), status, 3*time.Second)
	if !strings.Contains(msg, "agent worker (t1) errored in 3s") {
		t.Fatalf("unexpected message: %q", msg)
	}
	if !strings.Contains(msg, "boom went the thing") {
		t.Fatalf("expected collapsed preview, got %q", msg)
	}
}

func TestFormat_TruncatesLongPreview(t *testing.T) {
	long := strings.Repeat("a", 500)
	status := threadctl.AgentStatus{Kind: threadctl.StatusCompleted, Message: long}
	msg := Format("default", threadctl.ThreadId("t2"), status, time.Minute)
	if !strings.Contains(msg, "…") {
		t.Fatal("expected truncated preview to end with an ellipsis")
	}
}

func TestFormat_NoPreviewWhenMessageEmpty(t *testing.T) {
	status := threadctl.AgentStatus{Kind: threadctl.StatusRunning}
	msg := Format("default", threadctl.ThreadId("t3"), status, 0)
	if strings.Contains(msg, ":") {
		t.Fatalf("expected no preview suffix, got %q", msg)
	}
}
