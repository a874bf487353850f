// Package obslog is the structured event logger the orchestration core
// writes to: spawn/interaction lifecycle events and status transitions,
// one JSON object per line.
package obslog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category groups events by the subsystem that produced them.
type Category string

const (
	CategorySpawn       Category = "spawn"
	CategoryInteraction Category = "interaction"
	CategoryStatus      Category = "status"
	CategoryApproval    Category = "approval"
	CategoryRegistry    Category = "registry"
)

// Event is one structured log line.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Category  Category       `json:"category"`
	EventType string         `json:"type"`
	ThreadID  string         `json:"thread_id,omitempty"`
	ParentID  string         `json:"parent_id,omitempty"`
	Message   string         `json:"message,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Logger writes Events to an append-only JSONL file. A nil *Logger is
// valid and silently discards every call, so callers that construct one
// optionally (e.g. in tests) never need a nil check.
type Logger struct {
	mu   sync.Mutex
	file *os.File
}

// New opens (creating if needed) path for append and returns a Logger
// backed by it.
func New(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &Logger{file: f}, nil
}

// Discard is a Logger that drops every event, useful where a caller
// needs a non-nil Logger but has nowhere durable to write (e.g. tests
// that only assert on in-memory state).
func Discard() *Logger { return &Logger{} }

func (l *Logger) Log(e Event) {
	if l == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = l.file.Write(data)
}

func (l *Logger) SpawnBegin(threadID, parentID, agentType, agentName string) {
	l.Log(Event{Category: CategorySpawn, EventType: "spawn_begin", ThreadID: threadID, ParentID: parentID,
		Details: map[string]any{"agent_type": agentType, "agent_name": agentName}})
}

func (l *Logger) SpawnEnd(threadID, parentID, prompt, status string) {
	l.Log(Event{Category: CategorySpawn, EventType: "spawn_end", ThreadID: threadID, ParentID: parentID,
		Details: map[string]any{"prompt": prompt, "status": status}})
}

func (l *Logger) InteractionBegin(threadID, preview string) {
	l.Log(Event{Category: CategoryInteraction, EventType: "interaction_begin", ThreadID: threadID, Message: preview})
}

func (l *Logger) InteractionEnd(threadID string) {
	l.Log(Event{Category: CategoryInteraction, EventType: "interaction_end", ThreadID: threadID})
}

func (l *Logger) StatusTransition(threadID, message string, final bool) {
	l.Log(Event{Category: CategoryStatus, EventType: "status_transition", ThreadID: threadID, Message: message,
		Details: map[string]any{"final": final}})
}

func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
