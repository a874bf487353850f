// Package statusobserver implements component H: a background task that
// watches a spawned thread's status and delivers a human-readable
// one-line notification per transition (non-final ones throttled).
package statusobserver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/odvcencio/subagentkit/pkg/threadctl"
)

// throttleInterval bounds how often a non-final transition is delivered
// to the sink per thread; a turn loop emitting many rapid intermediate
// status updates shouldn't flood the session with one line each. Final
// transitions always deliver immediately regardless of the limiter.
const throttleInterval = 500 * time.Millisecond

// Sink is the session's notification surface. The concrete
// implementation (a UI pane, a CLI printer, a websocket push) lives
// outside this core; Watch only needs to call Deliver.
type Sink interface {
	Deliver(threadID threadctl.ThreadId, message string, final bool)
}

const maxPreviewLen = 160

func verbFor(kind threadctl.AgentStatusKind) string {
	switch kind {
	case threadctl.StatusPendingInit:
		return "initializing"
	case threadctl.StatusRunning:
		return "running"
	case threadctl.StatusCompleted:
		return "completed"
	case threadctl.StatusErrored:
		return "errored"
	case threadctl.StatusShutdown:
		return "stopped"
	case threadctl.StatusNotFound:
		return "not found"
	default:
		return "unknown"
	}
}

// preview collapses whitespace and truncates to maxPreviewLen runes,
// appending an ellipsis when truncated.
func preview(s string) string {
	fields := strings.Fields(s)
	collapsed := strings.Join(fields, " ")
	runes := []rune(collapsed)
	if len(runes) <= maxPreviewLen {
		return collapsed
	}
	return string(runes[:maxPreviewLen]) + "…"
}

// Format composes the single-line message for one status transition,
// given the role name this thread was spawned with and the elapsed time
// to report (Watch passes the time since it started watching).
func Format(role string, id threadctl.ThreadId, status threadctl.AgentStatus, elapsed time.Duration) string {
	msg := fmt.Sprintf("agent %s (%s) %s in %s", role, id, verbFor(status.Kind), elapsed.Round(time.Second))
	if p := preview(status.Message); p != "" {
		msg += ": " + p
	}
	return msg
}

// Watch subscribes to id's status and delivers a formatted message to
// sink for each status it receives, until the watch closes or a final
// status is delivered. Non-final statuses arriving within
// throttleInterval of the last delivered one are dropped. Intended to be run in its own goroutine immediately after a
// successful spawn.
func Watch(ctx context.Context, mgr *threadctl.Manager, id threadctl.ThreadId, role string, sink Sink) {
	sub, err := mgr.SubscribeStatus(id)
	if err != nil {
		sink.Deliver(id, Format(role, id, threadctl.NotFoundStatus(), 0), true)
		return
	}
	start := time.Now()
	limiter := rate.NewLimiter(rate.Every(throttleInterval), 1)
	for {
		select {
		case <-ctx.Done():
			return
		case status, ok := <-sub.Chan():
			if !ok {
				return
			}
			final := status.IsFinal()
			if !final && !limiter.Allow() {
				continue
			}
			sink.Deliver(id, Format(role, id, status, time.Since(start)), final)
			if final {
				return
			}
		}
	}
}
