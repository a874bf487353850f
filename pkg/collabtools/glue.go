package collabtools

import (
	"context"

	"github.com/odvcencio/subagentkit/pkg/obslog"
	"github.com/odvcencio/subagentkit/pkg/statusobserver"
	"github.com/odvcencio/subagentkit/pkg/threadctl"
)

func noteFailureEvent(id threadctl.ThreadId, err error) obslog.Event {
	return obslog.Event{
		Category:  obslog.CategorySpawn,
		EventType: "set_thread_note_failed",
		ThreadID:  string(id),
		Message:   err.Error(),
	}
}

// statusObserverWatch runs component H's background watcher against the
// handler's configured sink. A Handler with no Sink configured never
// calls this (see SpawnAgent), so observer.Watch always has somewhere
// to deliver to.
func statusObserverWatch(ctx context.Context, h *Handler, id threadctl.ThreadId, role string) {
	statusobserver.Watch(ctx, h.Manager, id, role, h.Sink)
}
