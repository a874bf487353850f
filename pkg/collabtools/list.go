package collabtools

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/odvcencio/subagentkit/pkg/rolloutindex"
	"github.com/odvcencio/subagentkit/pkg/threadctl"
)

type listActiveArgs struct {
	Scope         string `json:"scope,omitempty"`
	IncludeTree   bool   `json:"include_tree,omitempty"`
	IncludeClosed bool   `json:"include_closed,omitempty"`
}

type activeAgentInfo struct {
	ID                string `json:"id"`
	AgentType         string `json:"agent_type"`
	AgentName         string `json:"agent_name,omitempty"`
	Status            string `json:"status"`
	ThreadName        string `json:"thread_name,omitempty"`
	ThreadNote        string `json:"thread_note,omitempty"`
	ParentID          string `json:"parent_id,omitempty"`
	Depth             int    `json:"depth,omitempty"`
	StatusDurationSec int64  `json:"status_duration_sec,omitempty"`
}

type listActiveResponse struct {
	Agents []activeAgentInfo `json:"agents"`
}

// ListActiveAgents implements the list_active_agents tool.
func (h *Handler) ListActiveAgents(ctx context.Context, caller CallerContext, argsJSON string) (string, error) {
	var args listActiveArgs
	if argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return "", RespondToModel("invalid arguments: %v", err)
		}
	}
	scope := args.Scope
	if scope == "" {
		scope = "children"
	}

	var ids []threadctl.ThreadId
	switch scope {
	case "children":
		ids = h.Manager.ListChildren(caller.ThreadID)
	case "descendants":
		ids = h.Manager.ListDescendants(caller.ThreadID)
	case "all":
		ids = h.Manager.ListThreadIDs()
	default:
		return "", RespondToModel("unknown scope %q", scope)
	}

	names := h.Index.FindThreadNamesByIDs(ids)
	notes := h.Index.FindThreadNotesByIDs(ids)

	agents := make([]activeAgentInfo, 0, len(ids))
	for _, id := range ids {
		status := h.Manager.GetStatus(id)
		if status.IsFinal() && !args.IncludeClosed {
			continue
		}
		rec, ok := h.Manager.GetRecord(id)
		if !ok {
			continue
		}
		info := activeAgentInfo{
			ID:         string(id),
			AgentType:  rec.SessionSource.AgentType,
			AgentName:  rec.SessionSource.AgentName,
			Status:     status.Kind.String(),
			ThreadName: names[id],
			ThreadNote: notes[id],
		}
		if args.IncludeTree {
			if parent, ok := rec.ParentThreadID(); ok {
				info.ParentID = string(parent)
			}
			info.Depth = rec.Depth()
		}
		if rec.RolloutPath != "" {
			if d, ok := statusDurationFromRollout(rec.RolloutPath, status.Kind.String()); ok {
				info.StatusDurationSec = d
			}
		}
		agents = append(agents, info)
	}

	data, err := json.Marshal(listActiveResponse{Agents: agents})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// statusDurationFromRollout scans path from EOF backward to find
// the most recent status-transition timestamp, returning the elapsed
// duration in seconds. Returns ok=false if the file can't be read.
func statusDurationFromRollout(path, currentStatus string) (int64, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()
	result, err := rolloutindex.ScanStatusFromEnd(rolloutindex.FileReaderAt{File: f}, currentStatus, rolloutindex.DefaultParser)
	if err != nil || !result.HasStatusTimestamp {
		return 0, false
	}
	return rolloutindex.StatusDurationSecs(time.Now(), result.StatusTimestamp), true
}

type listAgentsArgs struct {
	AgentType string `json:"agent_type,omitempty"`
	Expanded  bool   `json:"expanded,omitempty"`
}

type agentSummary struct {
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Model           string            `json:"model,omitempty"`
	ReasoningEffort string            `json:"reasoning_effort,omitempty"`
	DefaultPrompt   string            `json:"default_prompt,omitempty"`
	Personas        map[string]string `json:"personas,omitempty"`
}

type listAgentsResponse struct {
	Agents []agentSummary `json:"agents"`
}

// ListAgents implements the list_agents tool: a pure read over the
// cached registry.
func (h *Handler) ListAgents(argsJSON string) (string, error) {
	var args listAgentsArgs
	if argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return "", RespondToModel("invalid arguments: %v", err)
		}
	}
	filter := strings.ToLower(strings.TrimSpace(args.AgentType))

	var out []agentSummary
	for _, def := range h.Registry.List() {
		if filter != "" && !strings.Contains(strings.ToLower(def.Name), filter) {
			continue
		}
		summary := agentSummary{Name: def.Name, Description: def.Description}
		if args.Expanded {
			summary.Model = def.Model
			summary.ReasoningEffort = string(def.ReasoningEffort)
			summary.DefaultPrompt = def.DefaultInstructions
			if len(def.NamedPersonas) > 0 {
				summary.Personas = map[string]string{}
				for name, p := range def.NamedPersonas {
					summary.Personas[name] = p.Instructions
				}
			}
		}
		out = append(out, summary)
	}

	data, err := json.Marshal(listAgentsResponse{Agents: out})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type readAgentArgs struct {
	AgentType string `json:"agent_type"`
}

// ReadAgent implements the read_agent tool: a pure read of a single
// role definition from the cached registry.
func (h *Handler) ReadAgent(argsJSON string) (string, error) {
	var args readAgentArgs
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", RespondToModel("invalid arguments: %v", err)
	}
	agentType := strings.ToLower(strings.TrimSpace(args.AgentType))
	if agentType == "" {
		return "", RespondToModel("agent_type is required")
	}

	def, err := h.resolveTemplate(agentType)
	if err != nil {
		return "", RespondToModel("unknown agent_type %q", agentType)
	}

	summary := agentSummary{
		Name:            def.Name,
		Description:     def.Description,
		Model:           def.Model,
		ReasoningEffort: string(def.ReasoningEffort),
		DefaultPrompt:   def.DefaultInstructions,
	}
	if len(def.NamedPersonas) > 0 {
		summary.Personas = map[string]string{}
		for name, p := range def.NamedPersonas {
			summary.Personas[name] = p.Instructions
		}
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
