package rolloutindex

import "github.com/odvcencio/subagentkit/pkg/threadctl"

// Index answers id-keyed lookups against the rollout persistence layer.
// The persistence layer itself is out of scope here; Index is the
// narrow read interface this core consumes.
type Index interface {
	FindThreadNamesByIDs(ids []threadctl.ThreadId) map[threadctl.ThreadId]string
	FindThreadNotesByIDs(ids []threadctl.ThreadId) map[threadctl.ThreadId]string
	RolloutPathForID(id threadctl.ThreadId) (string, bool)
	// ConfigSnapshotForID returns the model/sandbox/cwd/tools config a
	// thread was last spawned or resumed with, as persisted alongside
	// its rollout. resume_agent rebuilds a closed thread from
	// this rather than the resuming caller's own turn config.
	ConfigSnapshotForID(id threadctl.ThreadId) (threadctl.ConfigSnapshot, bool)
}

// MapIndex is a simple in-memory Index, useful for tests and for
// embedding results already held by the thread manager (thread notes
// live on the ThreadRecord itself; names come from the role the thread
// was spawned with).
type MapIndex struct {
	Names        map[threadctl.ThreadId]string
	Notes        map[threadctl.ThreadId]string
	RolloutPaths map[threadctl.ThreadId]string
	Configs      map[threadctl.ThreadId]threadctl.ConfigSnapshot
}

func NewMapIndex() *MapIndex {
	return &MapIndex{
		Names:        map[threadctl.ThreadId]string{},
		Notes:        map[threadctl.ThreadId]string{},
		RolloutPaths: map[threadctl.ThreadId]string{},
		Configs:      map[threadctl.ThreadId]threadctl.ConfigSnapshot{},
	}
}

func (m *MapIndex) FindThreadNamesByIDs(ids []threadctl.ThreadId) map[threadctl.ThreadId]string {
	out := map[threadctl.ThreadId]string{}
	for _, id := range ids {
		if name, ok := m.Names[id]; ok {
			out[id] = name
		}
	}
	return out
}

func (m *MapIndex) FindThreadNotesByIDs(ids []threadctl.ThreadId) map[threadctl.ThreadId]string {
	out := map[threadctl.ThreadId]string{}
	for _, id := range ids {
		if note, ok := m.Notes[id]; ok {
			out[id] = note
		}
	}
	return out
}

func (m *MapIndex) RolloutPathForID(id threadctl.ThreadId) (string, bool) {
	p, ok := m.RolloutPaths[id]
	return p, ok
}

func (m *MapIndex) ConfigSnapshotForID(id threadctl.ThreadId) (threadctl.ConfigSnapshot, bool) {
	cfg, ok := m.Configs[id]
	return cfg, ok
}
