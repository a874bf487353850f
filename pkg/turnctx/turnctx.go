// Package turnctx implements component G: the immutable per-turn
// context snapshot handlers consume to build a child ConfigSnapshot by
// cloning and overriding.
package turnctx

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/odvcencio/subagentkit/pkg/threadctl"
)

// TurnContext is the snapshot a handler reads from when building a
// spawn or resume request: model/provider selection, reasoning,
// instructions, sandbox, cwd, session source, feature flags, and a
// config reference.
type TurnContext struct {
	SessionID       string
	Model           string
	Provider        string
	ReasoningEffort string
	ReasoningSummary string

	DeveloperInstructions string
	CompactInstructions   string
	ShellInstructions     string

	Cwd           string
	SandboxExePath string
	SandboxPolicy string

	SessionSource threadctl.SessionSource
	Features      map[string]bool

	// TokenBudget and CostBudget are optional per-thread ceilings,
	// expressed with k8s.io/apimachinery's quantity type so operators
	// can write "2Mi" / "500m"-style budget values in configuration the
	// way they would size a container resource request.
	TokenBudget *resource.Quantity
	CostBudget  *resource.Quantity
}

// Enabled reports whether a named feature flag is set for this turn.
func (t *TurnContext) Enabled(feature string) bool {
	if t.Features == nil {
		return false
	}
	return t.Features[feature]
}

// BuildChildConfig clones this turn's relevant fields into a
// ConfigSnapshot for a to-be-spawned child, applying overrides supplied
// by the caller. Overrides that are the zero value are left at the
// parent's value (spawn_agent's override precedence is resolved by the
// collabtools package, which calls this with already-resolved final
// values).
func (t *TurnContext) BuildChildConfig(model, reasoningEffort, sandboxPolicy, cwd string, toolsAllow, toolsDeny []string) threadctl.ConfigSnapshot {
	if model == "" {
		model = t.Model
	}
	if reasoningEffort == "" {
		reasoningEffort = t.ReasoningEffort
	}
	if sandboxPolicy == "" {
		sandboxPolicy = t.SandboxPolicy
	}
	if cwd == "" {
		cwd = t.Cwd
	}
	return threadctl.ConfigSnapshot{
		Model:          model,
		ReasoningEffort: reasoningEffort,
		SandboxPolicy:  sandboxPolicy,
		Cwd:            cwd,
		ToolsAllow:     toolsAllow,
		ToolsDeny:      toolsDeny,
		ApprovalPolicy: "never", // the router handles approvals
		CollabEnabled:  true,
	}
}

// DetermineSessionID derives a stable session identifier for cwd: the
// git repo name + branch when cwd itself holds a .git directory (a
// subdirectory of a repository, or a worktree whose .git is a file, is
// not detected), else the directory name plus a short hash of the
// absolute path.
func DetermineSessionID(cwd string) string {
	if repo, branch, ok := detectGitRepo(cwd); ok {
		return fmt.Sprintf("%s-%s", repo, branch)
	}
	abs, err := filepath.Abs(cwd)
	if err != nil {
		abs = cwd
	}
	return fmt.Sprintf("%s-%s", filepath.Base(abs), shortHash(abs))
}

func detectGitRepo(cwd string) (repo, branch string, ok bool) {
	gitDir := filepath.Join(cwd, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return "", "", false
	}
	headPath := filepath.Join(gitDir, "HEAD")
	data, err := os.ReadFile(headPath)
	if err != nil {
		return filepath.Base(cwd), "unknown", true
	}
	branch = parseHeadRef(string(data))
	return filepath.Base(cwd), branch, true
}

func parseHeadRef(head string) string {
	const prefix = "ref: refs/heads/"
	for i := 0; i < len(head); i++ {
		if head[i] == '\n' {
			head = head[:i]
			break
		}
	}
	if len(head) > len(prefix) && head[:len(prefix)] == prefix {
		return head[len(prefix):]
	}
	return "detached"
}

func shortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:8]
}

// GenerateSessionID appends a monotonic ULID to a sanitised base name,
// producing a globally-unique, sortable session identifier.
func GenerateSessionID(base string) string {
	return fmt.Sprintf("%s-%s", base, ulid.Make().String())
}

// NewCallID mints an opaque function-call identifier for a collab tool
// invocation.
func NewCallID() string {
	return uuid.NewString()
}
