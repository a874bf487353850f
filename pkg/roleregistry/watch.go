package roleregistry

import (
	"log"

	"github.com/fsnotify/fsnotify"

	"github.com/odvcencio/subagentkit/pkg/roletemplate"
)

// Watcher reloads a Registry whenever one of its discovery roots changes
// on disk. Construct with WatchRoots; call Close to stop watching.
type Watcher struct {
	fsw *fsnotify.Watcher
	done chan struct{}
}

// WatchRoots starts watching roots.UserDir and every entry in
// roots.ProjectDirs, plus every subdirectory beneath each (bounded by
// the same MaxWalkDepth/MaxWalkDirCount as discovery, so a role file
// nested under "<root>/agents/team/" triggers a reload too), triggering
// a full Registry.Reload on every write/create/remove/rename event.
// Directories that don't exist yet are skipped; they won't pick up
// later creation without a rebuild. Returns a nil Watcher and the error
// if fsnotify can't be initialised (e.g. inotify instance limits); the
// registry itself is unaffected and keeps serving what it already loaded.
func WatchRoots(reg *Registry, roots Roots) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	watchRoots := append([]string{}, roots.ProjectDirs...)
	if roots.UserDir != "" {
		watchRoots = append(watchRoots, roots.UserDir)
	}
	for _, root := range watchRoots {
		dirs, truncated := roletemplate.WalkDirs(root, MaxWalkDepth, MaxWalkDirCount)
		if truncated {
			log.Printf("roleregistry: watch under %s stopped after %d directories (limit reached)", root, MaxWalkDirCount)
		}
		for _, dir := range dirs {
			if err := fsw.Add(dir); err != nil {
				// Missing directories are common (no .codex/.agents in this
				// repo, no ~/.codex/.agents yet) — not fatal to watching the
				// roots that do exist.
				continue
			}
		}
	}

	w := &Watcher{fsw: fsw, done: make(chan struct{})}
	go w.loop(reg, roots)
	return w, nil
}

func (w *Watcher) loop(reg *Registry, roots Roots) {
	for {
		select {
		case _, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if err := reg.Reload(roots); err != nil {
				log.Printf("roleregistry: reload after fs event failed: %v", err)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("roleregistry: watch error: %v", err)
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher and releases its underlying fsnotify handle.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
