package collabtools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/odvcencio/subagentkit/pkg/threadctl"
)

type resumeArgs struct {
	ID string `json:"id"`
}

type resumeResponse struct {
	AgentID string `json:"agent_id"`
	Status  string `json:"status"`
}

// ResumeAgent implements the resume_agent tool: a no-op returning the
// current status unless the thread is NotFound, in which case it
// materialises a new thread from the persisted rollout.
func (h *Handler) ResumeAgent(ctx context.Context, caller CallerContext, argsJSON string) (string, error) {
	var args resumeArgs
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", RespondToModel("invalid arguments: %v", err)
	}
	if strings.TrimSpace(args.ID) == "" {
		return "", RespondToModel("id is required")
	}
	if caller.Turn == nil {
		return "", RespondToModel("internal: caller turn context is required")
	}

	id := threadctl.ThreadId(args.ID)
	status := h.Manager.GetStatus(id)
	if status.Kind != threadctl.StatusNotFound {
		return marshalResumeResult(args.ID, status)
	}

	rolloutPath, ok := h.Index.RolloutPathForID(id)
	if !ok {
		return "", RespondToModel("no rollout found for thread %q", args.ID)
	}

	childDepth := 1
	if caller.Source.IsSubAgent() {
		childDepth = caller.Source.Depth + 1
	}
	if childDepth > threadctl.MaxSpawnDepth {
		return "", RespondToModel((threadctl.ErrDepthLimit{AttemptedDepth: childDepth}).Error())
	}

	// Resuming rebuilds from the thread's own previously persisted
	// model/sandbox/cwd/tools configuration, not the resuming caller's.
	// The snapshot is reused as persisted except CollabEnabled, which is
	// recomputed for the new depth. ConfigSnapshot carries no base
	// instructions, so none are cleared here.
	persisted, ok := h.Index.ConfigSnapshotForID(id)
	if !ok {
		return "", RespondToModel("no persisted configuration found for thread %q", args.ID)
	}
	cfg := persisted.Clone()
	cfg.CollabEnabled = childDepth < threadctl.MaxSpawnDepth
	source := threadctl.SubAgent(caller.ThreadID, childDepth, "", "", nil, nil)

	newID, err := h.Manager.ResumeAgentFromRollout(ctx, cfg, rolloutPath, source)
	if err != nil {
		return "", RespondToModel(err.Error())
	}
	return marshalResumeResult(string(newID), h.Manager.GetStatus(newID))
}

func marshalResumeResult(id string, status threadctl.AgentStatus) (string, error) {
	data, err := json.Marshal(resumeResponse{AgentID: id, Status: status.Kind.String()})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
