package collabtools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/odvcencio/subagentkit/pkg/threadctl"
)

type sendInputArgs struct {
	ID        string    `json:"id"`
	Message   string    `json:"message,omitempty"`
	Items     []itemArg `json:"items,omitempty"`
	Interrupt bool      `json:"interrupt,omitempty"`
}

type sendInputResponse struct {
	SubmissionID string `json:"submission_id"`
}

// SendInput implements the send_input tool.
func (h *Handler) SendInput(ctx context.Context, caller CallerContext, argsJSON string) (string, error) {
	var args sendInputArgs
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", RespondToModel("invalid arguments: %v", err)
	}
	if strings.TrimSpace(args.ID) == "" {
		return "", RespondToModel("id is required")
	}
	hasMessage := strings.TrimSpace(args.Message) != ""
	hasItems := len(args.Items) > 0
	if hasMessage == hasItems {
		return "", RespondToModel("exactly one of message or items is required")
	}

	var items []threadctl.InputItem
	if hasMessage {
		items = []threadctl.InputItem{{Kind: "text", Text: args.Message}}
	} else {
		items = toInputItems(args.Items)
	}

	id := threadctl.ThreadId(args.ID)
	p := preview(items)
	h.Log.InteractionBegin(args.ID, p)
	subID, err := h.Manager.SendInput(ctx, id, items, args.Interrupt)
	h.Log.InteractionEnd(args.ID)
	if err != nil {
		return "", RespondToModel(err.Error())
	}

	resp, _ := json.Marshal(sendInputResponse{SubmissionID: string(subID)})
	return string(resp), nil
}
