// Package threadctl implements the thread control surface (spec
// component D): spawn, send_input, shutdown, set_thread_note,
// subscribe_status, get_status, structural queries over the thread set,
// approval-for-thread routing, and resume-from-rollout.
package threadctl

import (
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// MaxSpawnDepth bounds how deeply sub-agents may spawn further
// sub-agents. A thread at depth MaxSpawnDepth may not spawn a child
// (that would be depth MaxSpawnDepth+1). See DESIGN.md Open Question 3.
const MaxSpawnDepth = 5

// ThreadId is an opaque, globally-unique, sortable identifier for a
// conversational thread.
type ThreadId string

// NewThreadId mints a new monotonic, timestamp-sortable thread id.
func NewThreadId() ThreadId {
	return ThreadId(ulid.Make().String())
}

func (id ThreadId) String() string { return string(id) }

// SessionSourceKind discriminates the two SessionSource variants.
type SessionSourceKind int

const (
	SourceRoot SessionSourceKind = iota
	SourceSubAgent
)

// SessionSource is the closed tagged variant recording a thread's
// provenance: either the user's root session, or a sub-agent spawned by
// another thread. Avoid open inheritance hierarchies: this is the
// only polymorphism the data model uses for thread provenance.
type SessionSource struct {
	Kind SessionSourceKind

	// Populated only when Kind == SourceSubAgent.
	ParentThreadID ThreadId
	Depth          int
	AgentType      string
	AgentName      string
	AllowList      []string
	DenyList       []string
}

// Root constructs the SessionSource for a top-level user session.
func Root() SessionSource {
	return SessionSource{Kind: SourceRoot}
}

// SubAgent constructs the SessionSource for a spawned sub-agent thread.
func SubAgent(parent ThreadId, depth int, agentType, agentName string, allow, deny []string) SessionSource {
	return SessionSource{
		Kind:           SourceSubAgent,
		ParentThreadID: parent,
		Depth:          depth,
		AgentType:      agentType,
		AgentName:      agentName,
		AllowList:      allow,
		DenyList:       deny,
	}
}

func (s SessionSource) IsSubAgent() bool { return s.Kind == SourceSubAgent }

// AgentStatusKind is the finite set of status values a thread may hold.
type AgentStatusKind int

const (
	StatusPendingInit AgentStatusKind = iota
	StatusRunning
	StatusCompleted
	StatusErrored
	StatusShutdown
	StatusNotFound
)

func (k AgentStatusKind) String() string {
	switch k {
	case StatusPendingInit:
		return "pending_init"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusErrored:
		return "errored"
	case StatusShutdown:
		return "shutdown"
	case StatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// AgentStatus carries the status kind plus the optional payload that
// accompanies Completed/Errored.
type AgentStatus struct {
	Kind    AgentStatusKind
	Message string // set for Completed (optional) and Errored (reason)
}

// IsFinal reports whether the status will never transition again:
// Completed, Errored, Shutdown, and NotFound are all final.
func (s AgentStatus) IsFinal() bool {
	switch s.Kind {
	case StatusCompleted, StatusErrored, StatusShutdown, StatusNotFound:
		return true
	default:
		return false
	}
}

func NotFoundStatus() AgentStatus { return AgentStatus{Kind: StatusNotFound} }

// ConfigSnapshot is the per-thread configuration captured at spawn time
// and handed down to children with overrides applied (component G).
type ConfigSnapshot struct {
	Model           string
	ReasoningEffort string
	SandboxPolicy   string // e.g. "workspace-write", "read-only", "danger-full-access"
	Cwd             string
	ToolsAllow      []string
	ToolsDeny       []string
	ApprovalPolicy  string // e.g. "never", "on-request", "untrusted"
	CollabEnabled   bool   // false once depth would exceed MaxSpawnDepth
}

// Clone returns a deep-enough copy suitable for building a child
// snapshot by mutation.
func (c ConfigSnapshot) Clone() ConfigSnapshot {
	clone := c
	clone.ToolsAllow = append([]string(nil), c.ToolsAllow...)
	clone.ToolsDeny = append([]string(nil), c.ToolsDeny...)
	return clone
}

// ThreadNote is a free-form runtime label attached to a thread.
// Normalize trims whitespace; an empty result clears the note.
func NormalizeThreadNote(note string) string {
	note = strings.TrimSpace(note)
	if len(note) > 256 {
		note = note[:256]
	}
	return note
}

// ThreadNotePointer converts a normalized note into the pointer form the
// set_thread_note response marshals: nil (JSON null) when the note was
// cleared, a pointer to the value otherwise.
func ThreadNotePointer(normalized string) *string {
	if normalized == "" {
		return nil
	}
	return &normalized
}

// ThreadRecord is the live bookkeeping the manager holds for one thread.
type ThreadRecord struct {
	ThreadID       ThreadId
	SessionSource  SessionSource
	ConfigSnapshot ConfigSnapshot

	ThreadNote  string
	RolloutPath string

	CreatedAt       time.Time
	StatusChangedAt time.Time

	activeTurn   *activeTurn // approval callback target for this thread's current turn
	finalCounted bool        // guards against double-decrementing activeThreadsGauge
}

// ParentThreadID returns the parent's id and whether one exists,
// derived from SessionSource rather than a direct pointer: never hold
// direct references to parents, they could be reaped.
func (r *ThreadRecord) ParentThreadID() (ThreadId, bool) {
	if r.SessionSource.Kind != SourceSubAgent {
		return "", false
	}
	return r.SessionSource.ParentThreadID, true
}

// Depth returns the thread's spawn depth: 0 for root threads.
func (r *ThreadRecord) Depth() int {
	if r.SessionSource.Kind != SourceSubAgent {
		return 0
	}
	return r.SessionSource.Depth
}

var (
	// ErrUnsupportedOperation indicates the manager has been torn down.
	ErrUnsupportedOperation = fmt.Errorf("collab manager unavailable")
)

// ErrDepthLimit indicates a spawn would exceed MaxSpawnDepth.
type ErrDepthLimit struct {
	AttemptedDepth int
}

func (e ErrDepthLimit) Error() string {
	return fmt.Sprintf("agent depth limit reached (attempted depth %d, max %d)", e.AttemptedDepth, MaxSpawnDepth)
}

// ErrThreadNotFound indicates the referenced thread is not (or no
// longer) live.
type ErrThreadNotFound struct {
	ThreadID ThreadId
}

func (e ErrThreadNotFound) Error() string {
	return fmt.Sprintf("thread %q not found", e.ThreadID)
}
