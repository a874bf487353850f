package collabtools

import (
	"strings"

	"github.com/odvcencio/subagentkit/pkg/threadctl"
)

// itemArg is the wire shape for one InputItem: {"kind": "...", "text":
// "..."}.
type itemArg struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

func toInputItems(items []itemArg) []threadctl.InputItem {
	out := make([]threadctl.InputItem, 0, len(items))
	for _, it := range items {
		out = append(out, threadctl.InputItem{Kind: it.Kind, Text: it.Text})
	}
	return out
}

// preview renders items as a single-line prompt preview: plain text
// joined as-is, images and other references rendered as bracketed
// tokens per send_input's input-item rules.
func preview(items []threadctl.InputItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		switch it.Kind {
		case "text":
			parts = append(parts, it.Text)
		case "image":
			parts = append(parts, "[image]")
		case "local_image":
			parts = append(parts, "[local_image:"+it.Text+"]")
		case "skill":
			parts = append(parts, "[skill:"+it.Text+"]")
		case "mention":
			parts = append(parts, "[mention:"+it.Text+"]")
		default:
			parts = append(parts, "["+it.Kind+"]")
		}
	}
	return strings.Join(parts, " ")
}
