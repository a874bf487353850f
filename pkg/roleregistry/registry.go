// Package roleregistry assembles the process-wide role registry:
// discovering role template files across Project/User/System scopes in
// precedence order, parsing them via pkg/roletemplate, rejecting
// duplicate names, and sorting the final list by (scope_rank, name).
//
// This package unifies what would otherwise be two overlapping registry
// surfaces — a loose ".agents" template store and a stricter "agents"
// registry: pkg/roletemplate is the shared parser, and Registry is the
// single cache built on top of it, so precedence and validation are
// applied exactly once. See DESIGN.md Open Question 4.
package roleregistry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/odvcencio/subagentkit/pkg/roletemplate"
)

const (
	// MaxWalkDepth bounds both the ancestor walk (DiscoverProjectDirs)
	// and the downward role-file discovery walk (loadRoleDirs) at 4
	// levels.
	MaxWalkDepth = 4
	// MaxWalkDirCount bounds the number of directories either walk will
	// visit before stopping (and, for the downward walk, warning).
	MaxWalkDirCount = 2000
)

// Registry is the process-lifetime singleton cache of parsed role
// definitions. Construct via New; call Load once at first touch.
type Registry struct {
	mu         sync.RWMutex
	byKey      map[string]*roletemplate.RoleDefinition // canonical stem -> winning def
	stemsByKey map[string]map[string]bool              // canonical stem -> set of distinct literal stems seen
	byName     map[string][]string                     // role name -> canonical stems (for ambiguity detection)
	sorted     []*roletemplate.RoleDefinition
	errs       []error
	loader     *roletemplate.Loader
	group      singleflight.Group
	loaded     bool
	TestMode   bool
}

func New() *Registry {
	return &Registry{
		byKey:  map[string]*roletemplate.RoleDefinition{},
		byName: map[string][]string{},
		loader: roletemplate.NewLoader(),
	}
}

// Roots describes the filesystem discovery roots, highest-precedence
// first: Project outranks User outranks System. Discovery walks in the
// reverse order (System first, as the weakest layer, then User, then
// Project), overwriting as it goes, so the final map reflects
// highest-precedence-wins.
type Roots struct {
	ProjectDirs []string // every <ancestor>/.codex/.agents up to the .git root, outermost first
	UserDir     string   // ${CODEX_HOME}/.agents
}

// Load performs discovery exactly once (guarded by singleflight so
// concurrent first-touch callers collapse into a single build), then
// caches the result for the process lifetime.
func (r *Registry) Load(roots Roots) error {
	_, err, _ := r.group.Do("load", func() (any, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.loaded {
			return nil, nil
		}
		merged := map[string]*roletemplate.RoleDefinition{}
		stemsByKey := map[string]map[string]bool{}
		var errs []error

		recordStem := func(def *roletemplate.RoleDefinition) {
			key := roletemplate.CanonicalKey(def.Stem)
			if stemsByKey[key] == nil {
				stemsByKey[key] = map[string]bool{}
			}
			stemsByKey[key][def.Stem] = true
		}

		// Lowest precedence first: System (built-in bundle), then User,
		// then Project — each overwrites any prior entry with the same
		// canonical stem.
		errs = append(errs, r.loader.LoadBuiltin(merged)...)
		for _, def := range merged {
			recordStem(def)
		}

		if roots.UserDir != "" {
			if err := r.loader.SeedUserDirectory(roots.UserDir, r.TestMode); err != nil {
				errs = append(errs, fmt.Errorf("seed user dir: %w", err))
			}
			tmp := map[string]*roletemplate.RoleDefinition{}
			errs = append(errs, r.loadRoleDirs(roots.UserDir, roletemplate.ScopeUser, tmp)...)
			for k, def := range tmp {
				merged[k] = def
				recordStem(def)
			}
		}

		for _, dir := range roots.ProjectDirs {
			tmp := map[string]*roletemplate.RoleDefinition{}
			errs = append(errs, r.loadRoleDirs(dir, roletemplate.ScopeRepo, tmp)...)
			for k, def := range tmp {
				merged[k] = def
				recordStem(def)
			}
		}

		r.stemsByKey = stemsByKey
		byName := map[string][]string{}
		var list []*roletemplate.RoleDefinition
		seenNames := map[string]bool{}
		for key, def := range merged {
			if err := def.Validate(); err != nil {
				errs = append(errs, err)
				continue
			}
			byName[def.Name] = append(byName[def.Name], key)
			if seenNames[def.Name] {
				errs = append(errs, fmt.Errorf("duplicate agent name %q (keeping first-seen)", def.Name))
				continue
			}
			seenNames[def.Name] = true
			list = append(list, def)
		}

		sort.Slice(list, func(i, j int) bool {
			if list[i].Scope.Rank() != list[j].Scope.Rank() {
				return list[i].Scope.Rank() < list[j].Scope.Rank()
			}
			return list[i].Name < list[j].Name
		})

		r.byKey = merged
		r.byName = byName
		r.sorted = list
		r.errs = errs
		r.loaded = true
		return nil, nil
	})
	return err
}

// loadRoleDirs BFS-walks root (bounded by MaxWalkDepth/MaxWalkDirCount)
// and loads every "<stem>.md" it finds at any level into dst under
// scope, so a role file nested under e.g. "<root>/agents/team/foo.md"
// is discovered the same as one placed directly in root.
func (r *Registry) loadRoleDirs(root string, scope roletemplate.Scope, dst map[string]*roletemplate.RoleDefinition) []error {
	dirs, truncated := roletemplate.WalkDirs(root, MaxWalkDepth, MaxWalkDirCount)
	var errs []error
	if truncated {
		errs = append(errs, fmt.Errorf("role discovery under %s stopped after %d directories (limit reached)", root, MaxWalkDirCount))
	}
	for _, dir := range dirs {
		errs = append(errs, r.loader.LoadDirectory(dir, scope, dst)...)
	}
	return errs
}

// Reload discards the cached result and re-runs discovery from roots.
// Existing *RoleDefinition pointers returned by earlier List/Get/GetByName
// calls remain valid (never mutated in place) but may no longer be
// reachable from the registry after this returns.
func (r *Registry) Reload(roots Roots) error {
	r.mu.Lock()
	r.loaded = false
	r.mu.Unlock()
	return r.Load(roots)
}

// DiscoverProjectDirs walks from cwd upward, collecting every
// "<ancestor>/.codex/.agents" directory up to and including the
// directory containing a ".git" marker. Returned outermost-first so
// that later entries (closer to cwd) win on merge (highest precedence
// nearest the working directory).
func DiscoverProjectDirs(cwd string) []string {
	var dirs []string
	visited := 0
	cur := cwd
	for {
		visited++
		if visited > MaxWalkDirCount {
			break
		}
		candidate := filepath.Join(cur, ".codex", ".agents")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			dirs = append(dirs, candidate)
		}
		gitMarker := filepath.Join(cur, ".git")
		if _, err := os.Stat(gitMarker); err == nil {
			break
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
		if visited >= MaxWalkDepth+1 {
			// depth cap reached; stop even without a .git marker
			break
		}
	}
	// reverse so outermost (lowest precedence) comes first
	for i, j := 0, len(dirs)-1; i < j; i, j = i+1, j-1 {
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}
	return dirs
}

// Get looks up a role by exact stem. Returns ErrNotFound if no role has
// stem's canonical key. When several distinct literal stems share that
// key, only the winning definition's own stem resolves; any other
// spelling, including an exact but shadowed stem, yields ErrAmbiguous.
func (r *Registry) Get(stem string) (*roletemplate.RoleDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := roletemplate.CanonicalKey(stem)
	def, ok := r.byKey[key]
	if !ok {
		return nil, ErrNotFound{Stem: stem}
	}
	candidates := r.stemsByKey[key]
	if len(candidates) > 1 {
		normalized := roletemplate.NormalizeStem(stem)
		// Only the highest-precedence definition survives the merge;
		// ambiguity is still correctly detected for any key with more
		// than one distinct literal stem, but resolving to a
		// non-winning exact stem would require retaining shadowed
		// definitions, which this registry intentionally does not do.
		if !candidates[normalized] || def.Stem != normalized {
			return nil, ErrAmbiguous{Name: stem, Candidates: stemNames(candidates)}
		}
	}
	return def, nil
}

func stemNames(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// GetByName looks up a role by its declared name (the identifier used by
// spawn_agent's agent_type argument).
func (r *Registry) GetByName(name string) (*roletemplate.RoleDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys, ok := r.byName[name]
	if !ok || len(keys) == 0 {
		known := make([]string, 0, len(r.byName))
		for n := range r.byName {
			known = append(known, n)
		}
		return nil, ErrNotFound{Stem: name, Suggestions: suggestClosest(name, known, 3)}
	}
	if len(keys) > 1 {
		return nil, ErrAmbiguous{Name: name, Candidates: keys}
	}
	return r.byKey[keys[0]], nil
}

// List returns the sorted, deduplicated role list (scope_rank, name).
func (r *Registry) List() []*roletemplate.RoleDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*roletemplate.RoleDefinition, len(r.sorted))
	copy(out, r.sorted)
	return out
}

// Errors returns the parse/validation errors collected during Load.
// These never abort discovery; affected files are simply absent from
// the list.
func (r *Registry) Errors() []error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]error, len(r.errs))
	copy(out, r.errs)
	return out
}

type ErrNotFound struct {
	Stem        string
	Suggestions []string
}

func (e ErrNotFound) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("role %q not found", e.Stem)
	}
	return fmt.Sprintf("role %q not found (did you mean: %v?)", e.Stem, e.Suggestions)
}

type ErrAmbiguous struct {
	Name       string
	Candidates []string
}

func (e ErrAmbiguous) Error() string {
	return fmt.Sprintf("role name %q is ambiguous (candidates: %v)", e.Name, e.Candidates)
}
