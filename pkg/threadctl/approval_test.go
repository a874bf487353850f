package threadctl

import (
	"context"
	"testing"
)

type fakePrompter struct {
	decision ReviewDecision
}

func (f *fakePrompter) Prompt(ctx context.Context, req ApprovalRequest) (ReviewDecision, error) {
	return f.decision, nil
}

func TestRequestCommandApprovalForThread_NoActiveTurn(t *testing.T) {
	m := newTestManager()
	id, _ := m.Spawn(context.Background(), ConfigSnapshot{}, []InputItem{{Kind: "text", Text: "x"}}, Root())
	_, err := m.RequestCommandApprovalForThread(context.Background(), id, ApprovalRequest{Command: "ls"})
	if _, ok := err.(ErrNoActiveTurn); !ok {
		t.Fatalf("expected ErrNoActiveTurn, got %v", err)
	}
}

func TestRequestCommandApprovalForThread_UnknownThread(t *testing.T) {
	m := newTestManager()
	_, err := m.RequestCommandApprovalForThread(context.Background(), "nope", ApprovalRequest{})
	if _, ok := err.(ErrThreadNotFound); !ok {
		t.Fatalf("expected ErrThreadNotFound, got %v", err)
	}
}

func TestRequestCommandApprovalForThread_DelegatesToActivePrompter(t *testing.T) {
	m := newTestManager()
	id, _ := m.Spawn(context.Background(), ConfigSnapshot{}, []InputItem{{Kind: "text", Text: "x"}}, Root())
	rec, _ := m.GetRecord(id)
	rec.SetActiveTurn(&fakePrompter{decision: DecisionApproved})

	decision, err := m.RequestCommandApprovalForThread(context.Background(), id, ApprovalRequest{Command: "rm -rf /tmp/x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.IsApproval() {
		t.Fatal("expected an approval decision")
	}
}
