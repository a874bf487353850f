package collabtools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/odvcencio/subagentkit/pkg/threadctl"
)

type setNoteArgs struct {
	ID   string `json:"id"`
	Note string `json:"note,omitempty"`
}

type setNoteResponse struct {
	SubmissionID string  `json:"submission_id"`
	ThreadNote   *string `json:"thread_note"`
}

// SetThreadNote implements the set_thread_note tool.
func (h *Handler) SetThreadNote(ctx context.Context, argsJSON string) (string, error) {
	var args setNoteArgs
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", RespondToModel("invalid arguments: %v", err)
	}
	if strings.TrimSpace(args.ID) == "" {
		return "", RespondToModel("id is required")
	}
	subID, note, err := h.Manager.SetThreadNote(threadctl.ThreadId(args.ID), args.Note)
	if err != nil {
		return "", RespondToModel(err.Error())
	}
	data, err := json.Marshal(setNoteResponse{SubmissionID: string(subID), ThreadNote: threadctl.ThreadNotePointer(note)})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
