// Package approvalrouter implements component E: routing a sub-agent's
// approval request to its parent thread's active turn first, falling
// back to the sub-agent's own turn when the parent is gone or errors.
package approvalrouter

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/odvcencio/subagentkit/pkg/threadctl"
)

// ThreadManager is the subset of *threadctl.Manager this router needs,
// declared as an interface so tests can substitute a fake.
type ThreadManager interface {
	RequestCommandApprovalForThread(ctx context.Context, threadID threadctl.ThreadId, req threadctl.ApprovalRequest) (threadctl.ReviewDecision, error)
}

// AuditEntry records one routed approval decision.
type AuditEntry struct {
	Time       time.Time
	CallerID   threadctl.ThreadId
	RoutedTo   threadctl.ThreadId
	FellBack   bool
	Decision   threadctl.ReviewDecision
	Err        error
}

// Router forwards approval requests to the thread that owns the call
// and keeps a bounded audit trail.
type Router struct {
	mu    sync.Mutex
	audit []AuditEntry
}

const maxAuditEntries = 10000

func New() *Router {
	return &Router{}
}

// RouteApproval implements the three-step policy: try the parent first
// if callerSource is a sub-agent; on ErrThreadNotFound (or any error)
// fall back to the caller's own turn.
func (r *Router) RouteApproval(
	ctx context.Context,
	mgr ThreadManager,
	callerID threadctl.ThreadId,
	callerSource threadctl.SessionSource,
	req threadctl.ApprovalRequest,
) (threadctl.ReviewDecision, error) {
	if callerSource.IsSubAgent() {
		decision, err := mgr.RequestCommandApprovalForThread(ctx, callerSource.ParentThreadID, req)
		if err == nil {
			r.record(callerID, callerSource.ParentThreadID, false, decision, nil)
			return decision, nil
		}
		if !isFallbackEligible(err) {
			r.record(callerID, callerSource.ParentThreadID, false, threadctl.DecisionDenied, err)
			return threadctl.DecisionDenied, err
		}
		// fall through to the caller's own turn
	}

	decision, err := mgr.RequestCommandApprovalForThread(ctx, callerID, req)
	r.record(callerID, callerID, callerSource.IsSubAgent(), decision, err)
	return decision, err
}

// isFallbackEligible reports whether err should trigger the fallback to
// the caller's own turn: ThreadNotFound, or any other propagated error.
func isFallbackEligible(err error) bool {
	return err != nil
}

func (r *Router) record(caller, routedTo threadctl.ThreadId, fellBack bool, decision threadctl.ReviewDecision, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.audit = append(r.audit, AuditEntry{
		Time:     time.Now(),
		CallerID: caller,
		RoutedTo: routedTo,
		FellBack: fellBack,
		Decision: decision,
		Err:      err,
	})
	if len(r.audit) > maxAuditEntries {
		r.audit = r.audit[len(r.audit)-maxAuditEntries:]
	}
}

// AuditLog returns a copy of the recorded routing decisions.
func (r *Router) AuditLog() []AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]AuditEntry, len(r.audit))
	copy(out, r.audit)
	return out
}

// ErrNotApproved is returned by convenience callers that only care
// whether the final decision counts as an approval.
var ErrNotApproved = errors.New("request was not approved")
