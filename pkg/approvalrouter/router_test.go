package approvalrouter

import (
	"context"
	"testing"

	"github.com/odvcencio/subagentkit/pkg/threadctl"
)

type fakeManager struct {
	responses map[threadctl.ThreadId]func() (threadctl.ReviewDecision, error)
	calls     []threadctl.ThreadId
}

func (f *fakeManager) RequestCommandApprovalForThread(ctx context.Context, threadID threadctl.ThreadId, req threadctl.ApprovalRequest) (threadctl.ReviewDecision, error) {
	f.calls = append(f.calls, threadID)
	fn, ok := f.responses[threadID]
	if !ok {
		return threadctl.DecisionDenied, threadctl.ErrThreadNotFound{ThreadID: threadID}
	}
	return fn()
}

func TestRouteApproval_SubAgentRoutesToParentFirst(t *testing.T) {
	mgr := &fakeManager{responses: map[threadctl.ThreadId]func() (threadctl.ReviewDecision, error){
		"parent": func() (threadctl.ReviewDecision, error) { return threadctl.DecisionApproved, nil },
	}}
	r := New()
	source := threadctl.SubAgent("parent", 1, "worker", "", nil, nil)

	decision, err := r.RouteApproval(context.Background(), mgr, "child", source, threadctl.ApprovalRequest{Command: "ls"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision != threadctl.DecisionApproved {
		t.Fatalf("got %v", decision)
	}
	if len(mgr.calls) != 1 || mgr.calls[0] != "parent" {
		t.Fatalf("expected a single call routed to parent, got %v", mgr.calls)
	}
}

func TestRouteApproval_FallsBackOnParentNotFound(t *testing.T) {
	mgr := &fakeManager{responses: map[threadctl.ThreadId]func() (threadctl.ReviewDecision, error){
		"child": func() (threadctl.ReviewDecision, error) { return threadctl.DecisionApproved, nil },
	}}
	r := New()
	source := threadctl.SubAgent("gone-parent", 1, "worker", "", nil, nil)

	decision, err := r.RouteApproval(context.Background(), mgr, "child", source, threadctl.ApprovalRequest{Command: "ls"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision != threadctl.DecisionApproved {
		t.Fatalf("got %v", decision)
	}
	if len(mgr.calls) != 2 || mgr.calls[0] != "gone-parent" || mgr.calls[1] != "child" {
		t.Fatalf("expected parent attempt then fallback to caller, got %v", mgr.calls)
	}
}

func TestRouteApproval_RootGoesDirectlyToOwnTurn(t *testing.T) {
	mgr := &fakeManager{responses: map[threadctl.ThreadId]func() (threadctl.ReviewDecision, error){
		"root": func() (threadctl.ReviewDecision, error) { return threadctl.DecisionDenied, nil },
	}}
	r := New()

	decision, err := r.RouteApproval(context.Background(), mgr, "root", threadctl.Root(), threadctl.ApprovalRequest{Command: "ls"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision != threadctl.DecisionDenied {
		t.Fatalf("got %v", decision)
	}
	if len(mgr.calls) != 1 || mgr.calls[0] != "root" {
		t.Fatalf("expected a single direct call, got %v", mgr.calls)
	}
}

func TestRouteApproval_AuditLogRecordsDecisions(t *testing.T) {
	mgr := &fakeManager{responses: map[threadctl.ThreadId]func() (threadctl.ReviewDecision, error){
		"root": func() (threadctl.ReviewDecision, error) { return threadctl.DecisionApproved, nil },
	}}
	r := New()
	if _, err := r.RouteApproval(context.Background(), mgr, "root", threadctl.Root(), threadctl.ApprovalRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log := r.AuditLog()
	if len(log) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(log))
	}
}
