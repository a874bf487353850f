// Package collabtools implements component F: the model-facing collab
// tool handlers (spawn_agent, send_input, wait, resume_agent,
// close_agent, set_thread_note, list_active_agents, list_agents,
// read_agent). Each handler decodes a JSON arguments string, validates
// it, invokes the lower components (threadctl, approvalrouter,
// roleregistry, toolpolicy, turnctx, rolloutindex), and serialises a
// response or a RespondToModel error string.
package collabtools

import (
	"fmt"
	"path/filepath"

	"github.com/odvcencio/subagentkit/pkg/approvalrouter"
	"github.com/odvcencio/subagentkit/pkg/obslog"
	"github.com/odvcencio/subagentkit/pkg/roleregistry"
	"github.com/odvcencio/subagentkit/pkg/rolloutindex"
	"github.com/odvcencio/subagentkit/pkg/statusobserver"
	"github.com/odvcencio/subagentkit/pkg/threadctl"
	"github.com/odvcencio/subagentkit/pkg/turnctx"
)

// RespondToModelError is the recoverable error class these handlers
// return for invalid arguments, unknown models/efforts, depth-limit
// exhaustion, subtree violations, unknown thread ids, and ambiguous
// templates. The caller hands Error() back to the
// model verbatim as the tool's result text rather than treating it as a
// tool-execution failure.
type RespondToModelError struct {
	msg string
}

func RespondToModel(format string, args ...any) *RespondToModelError {
	return &RespondToModelError{msg: fmt.Sprintf(format, args...)}
}

func (e *RespondToModelError) Error() string { return e.msg }

// ThreadId is a local alias so call sites in this package don't need to
// import threadctl just to name its id type.
type ThreadId = threadctl.ThreadId

// Handler wires together every lower component the model-facing tools
// depend on.
type Handler struct {
	Manager  *threadctl.Manager
	Registry *roleregistry.Registry
	Router   *approvalrouter.Router
	Index    rolloutindex.Index
	Log      *obslog.Logger
	Sink     statusobserver.Sink
}

// CallerContext identifies the thread invoking a tool, its session
// provenance, and the turn it is currently running — component G's
// snapshot, handed in by the caller.
type CallerContext struct {
	ThreadID ThreadId
	Source   threadctl.SessionSource
	Turn     *turnctx.TurnContext
}

// resolveWorkingDirectory resolves requested against cwd (treating a
// relative path as cwd-relative) and reports whether the resolved path
// differs from cwd.
func resolveWorkingDirectory(cwd, requested string) (resolved string, changed bool, err error) {
	if requested == "" {
		return cwd, false, nil
	}
	candidate := requested
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(cwd, candidate)
	}
	resolved, err = filepath.Abs(candidate)
	if err != nil {
		return "", false, err
	}
	absCwd, err := filepath.Abs(cwd)
	if err != nil {
		return "", false, err
	}
	return resolved, resolved != absCwd, nil
}
