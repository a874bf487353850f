package collabtools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/odvcencio/subagentkit/pkg/roletemplate"
	"github.com/odvcencio/subagentkit/pkg/threadctl"
)

// builtinStems maps the short agent_type names spawn_agent authorises
// to the bundled template's file stem (built-in file stems are
// prefixed "codex_").
var builtinStems = map[string]string{
	"default":      "codex_default",
	"orchestrator": "codex_orchestrator",
	"worker":       "codex_worker",
	"explorer":     "codex_explorer",
	"reviewer":     "codex_reviewer",
	"architect":    "codex_architect",
	"bug_hunter":   "codex_bug_hunter",
}

type spawnArgs struct {
	Message          string    `json:"message,omitempty"`
	Items            []itemArg `json:"items,omitempty"`
	WorkingDirectory string    `json:"working_directory,omitempty"`
	AgentType        string    `json:"agent_type,omitempty"`
	AgentName        string    `json:"agent_name,omitempty"`
	Model            string    `json:"model,omitempty"`
	ReasoningEffort  string    `json:"reasoning_effort,omitempty"`
	ThreadNote       string    `json:"thread_note,omitempty"`
}

type spawnResponse struct {
	AgentID string `json:"agent_id"`
}

// SpawnAgent implements the spawn_agent tool.
func (h *Handler) SpawnAgent(ctx context.Context, caller CallerContext, argsJSON string) (string, error) {
	var args spawnArgs
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", RespondToModel("invalid arguments: %v", err)
	}
	if caller.Turn == nil {
		return "", fmt.Errorf("collabtools: caller turn context is required")
	}

	// Step 1: exactly one of message/items, and the depth guard.
	hasMessage := strings.TrimSpace(args.Message) != ""
	hasItems := len(args.Items) > 0
	if hasMessage == hasItems {
		return "", RespondToModel("exactly one of message or items is required")
	}

	childDepth := 1
	if caller.Source.IsSubAgent() {
		childDepth = caller.Source.Depth + 1
	}
	if childDepth > threadctl.MaxSpawnDepth {
		return "", RespondToModel((threadctl.ErrDepthLimit{AttemptedDepth: childDepth}).Error())
	}

	// Step 2: working_directory approval.
	resolvedCwd := caller.Turn.Cwd
	if args.WorkingDirectory != "" {
		resolved, changed, err := resolveWorkingDirectory(caller.Turn.Cwd, args.WorkingDirectory)
		if err != nil {
			return "", RespondToModel("invalid working_directory: %v", err)
		}
		resolvedCwd = resolved
		if changed {
			decision, err := h.Router.RouteApproval(ctx, h.Manager, caller.ThreadID, caller.Source, threadctl.ApprovalRequest{
				Command: fmt.Sprintf("spawn_agent --working-directory %s", resolved),
				Cwd:     caller.Turn.Cwd,
			})
			if err != nil || !decision.IsApproval() {
				return "", RespondToModel("spawn_agent in a different working_directory was not approved")
			}
		}
	}

	// Step 3: normalise and resolve the role template.
	agentType := strings.ToLower(strings.TrimSpace(args.AgentType))
	if agentType == "" {
		agentType = "default"
	}
	def, err := h.resolveTemplate(agentType)
	if err != nil {
		return "", RespondToModel("unknown agent_type %q", agentType)
	}

	// Step 4: resolve persona.
	var persona *roletemplate.Persona
	agentName := strings.TrimSpace(args.AgentName)
	switch {
	case agentName != "":
		p, ok := def.NamedPersonas[agentName]
		if !ok {
			return "", RespondToModel("unknown agent_name %q for agent_type %q", agentName, agentType)
		}
		persona = p
	case strings.TrimSpace(def.DefaultInstructions) != "":
		// use the role's default body
	case len(def.NamedPersonas) == 1:
		for _, p := range def.NamedPersonas {
			persona = p
		}
	default:
		return "", RespondToModel("agent_type %q has no default instructions and multiple personas; specify agent_name", agentType)
	}

	// Step 5: build the child config — role, then persona, then explicit
	// overrides, each layer winning over the last.
	finalModel := caller.Turn.Model
	finalEffort := roletemplate.ReasoningEffort(caller.Turn.ReasoningEffort)
	if def.Model != "" {
		finalModel = def.Model
	}
	if def.ReasoningEffort != "" {
		finalEffort = def.ReasoningEffort
	}
	if persona != nil {
		if persona.Model != "" {
			finalModel = persona.Model
		}
		if persona.ReasoningEffort != "" {
			finalEffort = persona.ReasoningEffort
		}
	}
	if args.Model != "" {
		finalModel = args.Model
	}
	if args.ReasoningEffort != "" {
		finalEffort = roletemplate.ReasoningEffort(strings.ToLower(strings.TrimSpace(args.ReasoningEffort)))
	}
	if err := validateModelAndEffort(finalModel, finalEffort); err != nil {
		return "", err
	}

	sandbox := caller.Turn.SandboxPolicy
	if def.ReadOnly {
		sandbox = "read-only"
	}

	cfg := caller.Turn.BuildChildConfig(finalModel, string(finalEffort), sandbox, resolvedCwd, def.ToolsAllow, def.ToolsDeny)

	// Step 7: depth-limited collab disable.
	if childDepth >= threadctl.MaxSpawnDepth {
		cfg.CollabEnabled = false
	}

	// Step 8: default thread_note.
	note := strings.TrimSpace(args.ThreadNote)
	if note == "" {
		note = defaultThreadNote(agentType, agentName, def, persona)
	}

	source := threadctl.SubAgent(caller.ThreadID, childDepth, agentType, agentName, cfg.ToolsAllow, cfg.ToolsDeny)

	var initial []threadctl.InputItem
	if hasMessage {
		initial = []threadctl.InputItem{{Kind: "text", Text: args.Message}}
	} else {
		initial = toInputItems(args.Items)
	}

	// Step 9: spawn, with begin/end events bracketing it.
	h.Log.SpawnBegin(string(caller.ThreadID), "", agentType, agentName)
	id, err := h.Manager.Spawn(ctx, cfg, initial, source)
	if err != nil {
		h.Log.SpawnEnd("", string(caller.ThreadID), "", "error")
		return "", fmt.Errorf("spawn failed: %w", err)
	}
	h.Log.SpawnEnd(string(id), string(caller.ThreadID), previewMessage(args, initial), h.Manager.GetStatus(id).Kind.String())

	if _, _, err := h.Manager.SetThreadNote(id, note); err != nil {
		h.Log.Log(noteFailureEvent(id, err))
	}

	// Step 10: start the background status observer.
	if h.Sink != nil {
		role := agentType
		if agentName != "" {
			role = agentType + ":" + agentName
		}
		go statusObserverWatch(ctx, h, id, role)
	}

	resp, _ := json.Marshal(spawnResponse{AgentID: string(id)})
	return string(resp), nil
}

func (h *Handler) resolveTemplate(agentType string) (*roletemplate.RoleDefinition, error) {
	if stem, ok := builtinStems[agentType]; ok {
		return h.Registry.Get(stem)
	}
	return h.Registry.GetByName(agentType)
}

func defaultThreadNote(agentType, agentName string, def *roletemplate.RoleDefinition, persona *roletemplate.Persona) string {
	label := agentType
	if agentName != "" {
		label += "/" + agentName
	}
	desc := def.Description
	if persona != nil && persona.Description != "" {
		desc = persona.Description
	}
	if desc == "" {
		return label
	}
	return label + ": " + desc
}

func previewMessage(args spawnArgs, items []threadctl.InputItem) string {
	if strings.TrimSpace(args.Message) != "" {
		return args.Message
	}
	return preview(items)
}
