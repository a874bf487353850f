package collabtools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/odvcencio/subagentkit/pkg/statuswatch"
	"github.com/odvcencio/subagentkit/pkg/threadctl"
)

const (
	minWaitTimeoutMs     = 10_000
	maxWaitTimeoutMs     = 1_800_000
	defaultWaitTimeoutMs = 300_000
)

type waitArgs struct {
	IDs       []string `json:"ids"`
	TimeoutMs *int64   `json:"timeout_ms,omitempty"`
}

type waitResponse struct {
	Status   map[string]threadctl.AgentStatus `json:"status"`
	TimedOut bool                              `json:"timed_out"`
}

func clampWaitTimeout(ms *int64) int64 {
	if ms == nil {
		return defaultWaitTimeoutMs
	}
	v := *ms
	if v < minWaitTimeoutMs {
		return minWaitTimeoutMs
	}
	if v > maxWaitTimeoutMs {
		return maxWaitTimeoutMs
	}
	return v
}

type pendingWait struct {
	key string
	sub *statuswatch.Subscriber[threadctl.AgentStatus]
}

// Wait implements the wait tool: subscribes to every id's status watch,
// races them against a clamped wall-clock deadline, and drains any
// further watchers that have already fired once the first final status
// is observed.
func (h *Handler) Wait(ctx context.Context, argsJSON string) (string, error) {
	start := time.Now()
	defer func() { waitDurationSeconds.Observe(time.Since(start).Seconds()) }()

	var args waitArgs
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", RespondToModel("invalid arguments: %v", err)
	}
	if len(args.IDs) == 0 {
		return "", RespondToModel("ids must not be empty")
	}
	if args.TimeoutMs != nil && *args.TimeoutMs <= 0 {
		return "", RespondToModel("timeout_ms must be positive")
	}
	timeoutMs := clampWaitTimeout(args.TimeoutMs)

	results := map[string]threadctl.AgentStatus{}
	var pending []pendingWait

	for _, key := range args.IDs {
		st := h.Manager.GetStatus(threadctl.ThreadId(key))
		if st.IsFinal() {
			results[key] = st
			continue
		}
		sub, err := h.Manager.SubscribeStatus(threadctl.ThreadId(key))
		if err != nil {
			results[key] = threadctl.NotFoundStatus()
			continue
		}
		pending = append(pending, pendingWait{key: key, sub: sub})
	}

	// If any initial status is already final (or every id was
	// unknown), skip waiting and return what's already known.
	if len(results) > 0 || len(pending) == 0 {
		return marshalWaitResult(results)
	}

	deadline, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	type arrival struct {
		key string
		st  threadctl.AgentStatus
	}
	arrivals := make(chan arrival, len(pending))
	for _, pw := range pending {
		go func(pw pendingWait) {
			for {
				select {
				case st, ok := <-pw.sub.Chan():
					if !ok {
						return
					}
					if st.IsFinal() {
						select {
						case arrivals <- arrival{key: pw.key, st: st}:
						case <-deadline.Done():
						}
						return
					}
				case <-deadline.Done():
					return
				}
			}
		}(pw)
	}

	select {
	case a := <-arrivals:
		results[a.key] = a.st
	case <-deadline.Done():
		return marshalWaitResult(results)
	}

	// Drain any other watchers that have already fired, non-blocking.
draining:
	for {
		select {
		case a := <-arrivals:
			results[a.key] = a.st
		default:
			break draining
		}
	}

	return marshalWaitResult(results)
}

func marshalWaitResult(results map[string]threadctl.AgentStatus) (string, error) {
	resp := waitResponse{Status: results, TimedOut: len(results) == 0}
	data, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
