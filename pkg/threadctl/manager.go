package threadctl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/odvcencio/subagentkit/pkg/statuswatch"
)

// SubmissionID identifies one accepted operation against a thread's
// submission queue (send_input, shutdown, ...).
type SubmissionID string

// OpKind distinguishes the operations a Manager submits to a thread's
// internal turn loop. The turn loop itself is opaque to this package
// (out of scope here); Manager only needs to record what was submitted
// and in what order, and to publish status transitions.
type OpKind int

const (
	OpUserInput OpKind = iota
	OpInterrupt
	OpShutdown
)

// InputItem is one piece of submitted input: text, an image reference,
// a skill reference, or a mention — enough structure for the status
// observer (H) to build a human-readable preview without needing the
// full conversational item schema (out of scope here).
type InputItem struct {
	Kind string // "text" | "image" | "local_image" | "skill" | "mention"
	Text string // for Kind=="text"; the referenced name/path otherwise
}

// TurnLoop is the (external, out-of-scope) loop that drives a thread's
// turns. Manager hands it each new thread's initial op and a publish
// callback, and submits later ops to it.
type TurnLoop interface {
	// Start is called once per spawned/resumed thread. Manager.Spawn
	// publishes Running itself once Start returns; the turn loop must
	// call publish for every later status transition until a final
	// status is reached.
	Start(ctx context.Context, threadID ThreadId, initial Op, publish func(AgentStatus))

	// Submit enqueues op against threadID's submission queue, after any
	// op submitted by an earlier call to Submit for the same thread.
	// Used for send_input (OpUserInput, optionally preceded by
	// OpInterrupt) and for shutdown (OpShutdown).
	Submit(ctx context.Context, threadID ThreadId, op Op) error
}

// Op is one operation submitted to a thread's submission queue.
type Op struct {
	Kind      OpKind
	Items     []InputItem
	Interrupt bool
}

// Manager is the thread control surface (component D): the single
// authoritative, mutex-guarded map of live threads, plus per-thread
// status watch channels.
type Manager struct {
	mu      sync.Mutex
	threads map[ThreadId]*ThreadRecord
	watches map[ThreadId]*statuswatch.Watch[AgentStatus]

	turnLoop TurnLoop
	torndown bool

	spawnGroup singleflight.Group
	submitSeq  uint64
}

func NewManager(turnLoop TurnLoop) *Manager {
	return &Manager{
		threads:  map[ThreadId]*ThreadRecord{},
		watches:  map[ThreadId]*statuswatch.Watch[AgentStatus]{},
		turnLoop: turnLoop,
	}
}

// Teardown marks the manager unavailable; subsequent Spawn calls fail
// with ErrUnsupportedOperation.
func (m *Manager) Teardown() {
	m.mu.Lock()
	m.torndown = true
	m.mu.Unlock()
}

func (m *Manager) nextSubmissionID() SubmissionID {
	m.mu.Lock()
	m.submitSeq++
	id := m.submitSeq
	m.mu.Unlock()
	return SubmissionID(fmt.Sprintf("sub_%d", id))
}

// Spawn constructs a new thread record in PendingInit, persists the
// session source, and enqueues initialInput atomically with creation.
// Fails with ErrUnsupportedOperation if the manager is torn down, or
// ErrDepthLimit if source's depth would exceed MaxSpawnDepth.
func (m *Manager) Spawn(ctx context.Context, cfg ConfigSnapshot, initialInput []InputItem, source SessionSource) (ThreadId, error) {
	ctx, span := startSpan(ctx, "threadctl.Spawn", attribute.Bool("sub_agent", source.IsSubAgent()), attribute.Int("depth", source.Depth))
	defer span.End()

	if source.Kind == SourceSubAgent && source.Depth > MaxSpawnDepth {
		return "", ErrDepthLimit{AttemptedDepth: source.Depth}
	}

	m.mu.Lock()
	if m.torndown {
		m.mu.Unlock()
		return "", ErrUnsupportedOperation
	}
	id := NewThreadId()
	now := time.Now()
	record := &ThreadRecord{
		ThreadID:        id,
		SessionSource:   source,
		ConfigSnapshot:  cfg,
		CreatedAt:       now,
		StatusChangedAt: now,
	}
	m.threads[id] = record
	watch := statuswatch.New(AgentStatus{Kind: StatusPendingInit})
	m.watches[id] = watch
	m.mu.Unlock()

	publish := func(s AgentStatus) {
		m.mu.Lock()
		if rec, ok := m.threads[id]; ok {
			rec.StatusChangedAt = time.Now()
			if s.IsFinal() && !rec.finalCounted {
				rec.finalCounted = true
				activeThreadsGauge.Dec()
			}
		}
		m.mu.Unlock()
		watch.Set(s)
	}

	// Start hands the turn loop (an external collaborator, out of scope
	// here) the initial op and the publish callback it must call for
	// every subsequent transition. The loop itself runs asynchronously;
	// Running is published here once Start returns to model "the
	// internal loop accepted the first submission" without this package
	// needing to know anything about the loop's internal scheduling.
	op := Op{Kind: OpUserInput, Items: initialInput}
	m.turnLoop.Start(ctx, id, op, publish)
	publish(AgentStatus{Kind: StatusRunning})

	spawnTotal.Inc()
	activeThreadsGauge.Inc()

	return id, nil
}

// SendInput submits items (and, if interrupt is true, an Interrupt op
// strictly before them) to id's submission queue. Empty input is
// rejected before anything is submitted.
func (m *Manager) SendInput(ctx context.Context, id ThreadId, items []InputItem, interrupt bool) (SubmissionID, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("input items must not be empty")
	}
	m.mu.Lock()
	_, ok := m.threads[id]
	m.mu.Unlock()
	if !ok {
		return "", ErrThreadNotFound{ThreadID: id}
	}
	// The interrupt, if requested, must be observable before the input
	// at the receiver: it is submitted first and
	// must be accepted before the input op is submitted.
	if interrupt {
		if err := m.turnLoop.Submit(ctx, id, Op{Kind: OpInterrupt}); err != nil {
			return "", fmt.Errorf("submitting interrupt: %w", err)
		}
	}
	if err := m.turnLoop.Submit(ctx, id, Op{Kind: OpUserInput, Items: items}); err != nil {
		return "", fmt.Errorf("submitting input: %w", err)
	}
	return m.nextSubmissionID(), nil
}

// Shutdown submits a Shutdown op to id and cascades to every transitive
// descendant (discovered by querying session sources). Returns once the
// submission is accepted, not once the thread has actually stopped.
// Submission failures during the cascade are discarded, not logged, and
// never abort the cascade.
func (m *Manager) Shutdown(ctx context.Context, id ThreadId) error {
	ctx, span := startSpan(ctx, "threadctl.Shutdown", attribute.String("thread_id", string(id)))
	defer span.End()

	m.mu.Lock()
	record, ok := m.threads[id]
	m.mu.Unlock()
	if !ok {
		return ErrThreadNotFound{ThreadID: id}
	}

	m.shutdownOne(ctx, record.ThreadID)

	descendants := m.ListDescendants(id)
	g, _ := errgroup.WithContext(ctx)
	for _, d := range descendants {
		d := d
		g.Go(func() error {
			m.shutdownOne(ctx, d)
			return nil
		})
	}
	_ = g.Wait() // individual failures never abort the cascade
	return nil
}

func (m *Manager) shutdownOne(ctx context.Context, id ThreadId) {
	m.mu.Lock()
	watch, ok := m.watches[id]
	rec := m.threads[id]
	m.mu.Unlock()
	if !ok {
		return
	}
	_ = m.turnLoop.Submit(ctx, id, Op{Kind: OpShutdown}) // best-effort, never aborts the cascade
	closeTotal.Inc()
	if rec != nil {
		m.mu.Lock()
		if !rec.finalCounted {
			rec.finalCounted = true
			activeThreadsGauge.Dec()
		}
		m.mu.Unlock()
	}
	watch.Set(AgentStatus{Kind: StatusShutdown})
}

// SetThreadNote attaches (or, for an empty/whitespace-only note,
// clears) a free-form label on id.
func (m *Manager) SetThreadNote(id ThreadId, note string) (SubmissionID, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.threads[id]
	if !ok {
		return "", "", ErrThreadNotFound{ThreadID: id}
	}
	normalized := NormalizeThreadNote(note)
	record.ThreadNote = normalized
	m.submitSeq++
	return SubmissionID(fmt.Sprintf("sub_%d", m.submitSeq)), normalized, nil
}

// SubscribeStatus returns a live subscriber whose first receive yields
// id's current status. Fails with ErrThreadNotFound if the record has
// been reaped.
func (m *Manager) SubscribeStatus(id ThreadId) (*statuswatch.Subscriber[AgentStatus], error) {
	m.mu.Lock()
	watch, ok := m.watches[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrThreadNotFound{ThreadID: id}
	}
	return watch.Subscribe(), nil
}

// GetStatus is a non-blocking snapshot; unknown ids yield NotFound, not
// an error.
func (m *Manager) GetStatus(id ThreadId) AgentStatus {
	m.mu.Lock()
	watch, ok := m.watches[id]
	m.mu.Unlock()
	if !ok {
		return NotFoundStatus()
	}
	return watch.Current()
}

// ListThreadIDs returns every currently-tracked thread id.
func (m *Manager) ListThreadIDs() []ThreadId {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]ThreadId, 0, len(m.threads))
	for id := range m.threads {
		ids = append(ids, id)
	}
	return ids
}

// ListChildren returns the direct sub-agent children of parent.
func (m *Manager) ListChildren(parent ThreadId) []ThreadId {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ThreadId
	for id, rec := range m.threads {
		if p, ok := rec.ParentThreadID(); ok && p == parent {
			out = append(out, id)
		}
	}
	return out
}

// ListDescendants returns every transitive descendant of root.
func (m *Manager) ListDescendants(root ThreadId) []ThreadId {
	m.mu.Lock()
	snapshot := make(map[ThreadId]ThreadId, len(m.threads)) // child -> parent
	for id, rec := range m.threads {
		if p, ok := rec.ParentThreadID(); ok {
			snapshot[id] = p
		}
	}
	m.mu.Unlock()

	var out []ThreadId
	for id := range snapshot {
		if isDescendantOf(snapshot, root, id) {
			out = append(out, id)
		}
	}
	return out
}

// IsDescendantOf walks candidate's parent_thread_id chain looking for
// ancestor.
func (m *Manager) IsDescendantOf(ancestor, candidate ThreadId) bool {
	m.mu.Lock()
	snapshot := make(map[ThreadId]ThreadId, len(m.threads))
	for id, rec := range m.threads {
		if p, ok := rec.ParentThreadID(); ok {
			snapshot[id] = p
		}
	}
	m.mu.Unlock()
	return isDescendantOf(snapshot, ancestor, candidate)
}

func isDescendantOf(parentOf map[ThreadId]ThreadId, ancestor, candidate ThreadId) bool {
	cur := candidate
	for {
		parent, ok := parentOf[cur]
		if !ok {
			return false
		}
		if parent == ancestor {
			return true
		}
		cur = parent
	}
}

// ResumeAgentFromRollout materialises a previously-closed thread from a
// persisted rollout path. A no-op (returns the existing id) when a
// thread for that rollout is already live.
func (m *Manager) ResumeAgentFromRollout(ctx context.Context, cfg ConfigSnapshot, rolloutPath string, source SessionSource) (ThreadId, error) {
	if source.Kind == SourceSubAgent && source.Depth > MaxSpawnDepth {
		return "", ErrDepthLimit{AttemptedDepth: source.Depth}
	}
	v, err, _ := m.spawnGroup.Do("resume:"+rolloutPath, func() (any, error) {
		m.mu.Lock()
		for id, rec := range m.threads {
			if rec.RolloutPath == rolloutPath {
				m.mu.Unlock()
				return id, nil
			}
		}
		m.mu.Unlock()

		id, err := m.Spawn(ctx, cfg, nil, source)
		if err != nil {
			return ThreadId(""), err
		}
		m.mu.Lock()
		if rec, ok := m.threads[id]; ok {
			rec.RolloutPath = rolloutPath
		}
		m.mu.Unlock()
		return id, nil
	})
	if err != nil {
		return "", err
	}
	return v.(ThreadId), nil
}

// GetRecord returns the live record for id, if any.
func (m *Manager) GetRecord(id ThreadId) (*ThreadRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.threads[id]
	return rec, ok
}
