package collabtools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/odvcencio/subagentkit/pkg/threadctl"
)

type closeArgs struct {
	ID string `json:"id"`
}

type closeResponse struct {
	Status string `json:"status"`
}

// CloseAgent implements the close_agent tool: a subtree-scoped shutdown.
func (h *Handler) CloseAgent(ctx context.Context, caller CallerContext, argsJSON string) (string, error) {
	var args closeArgs
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", RespondToModel("invalid arguments: %v", err)
	}
	if strings.TrimSpace(args.ID) == "" {
		return "", RespondToModel("id is required")
	}
	id := threadctl.ThreadId(args.ID)

	if caller.Source.IsSubAgent() && id != caller.ThreadID && !h.Manager.IsDescendantOf(caller.ThreadID, id) {
		return "", RespondToModel("Not permitted to close agents outside your subtree.")
	}

	if h.Manager.GetStatus(id).Kind == threadctl.StatusShutdown {
		return marshalCloseResult(threadctl.StatusShutdown)
	}

	if err := h.Manager.Shutdown(ctx, id); err != nil {
		return "", RespondToModel(err.Error())
	}
	return marshalCloseResult(threadctl.StatusShutdown)
}

func marshalCloseResult(kind threadctl.AgentStatusKind) (string, error) {
	data, err := json.Marshal(closeResponse{Status: kind.String()})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
