package roletemplate

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed bundled/*.md
var bundledFS embed.FS

// BuiltinStemPrefix is prepended to every compiled-in template's stem,
// matching the external interface's directory convention.
const BuiltinStemPrefix = "codex_"

// Loader discovers role template files from the compiled-in bundle and
// from filesystem override directories. Each call merges into a caller
// supplied map; the order of calls (and so which layer wins) is decided
// by the caller.
type Loader struct{}

func NewLoader() *Loader { return &Loader{} }

// LoadBuiltin parses every compiled-in template and merges it into dst,
// keyed by canonical stem. Returns per-file parse errors collected, never
// aborting on an individual failure.
func (l *Loader) LoadBuiltin(dst map[string]*RoleDefinition) []error {
	var errs []error
	entries, err := fs.ReadDir(bundledFS, "bundled")
	if err != nil {
		return []error{fmt.Errorf("read bundled dir: %w", err)}
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".md") {
			continue
		}
		data, err := bundledFS.ReadFile("bundled/" + entry.Name())
		if err != nil {
			errs = append(errs, fmt.Errorf("read %s: %w", entry.Name(), err))
			continue
		}
		stem := NormalizeStem(strings.TrimSuffix(entry.Name(), ".md"))
		def, err := Parse("bundled/"+entry.Name(), stem, string(data), ScopeSystem)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		dst[CanonicalKey(stem)] = def
	}
	return errs
}

// WalkDirs returns root and every subdirectory reachable from it within
// maxDepth levels (root itself is depth 0), breadth-first. Traversal
// stops once maxDirs directories have been visited, in which case
// truncated is true and the caller should surface a warning — nested
// role directories beyond that point are silently unreachable.
func WalkDirs(root string, maxDepth, maxDirs int) (dirs []string, truncated bool) {
	type queued struct {
		path  string
		depth int
	}
	queue := []queued{{path: root, depth: 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if len(dirs) >= maxDirs {
			return dirs, true
		}
		dirs = append(dirs, cur.path)
		if cur.depth >= maxDepth {
			continue
		}
		entries, err := os.ReadDir(cur.path)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				queue = append(queue, queued{path: filepath.Join(cur.path, entry.Name()), depth: cur.depth + 1})
			}
		}
	}
	return dirs, false
}

// LoadDirectory scans dir (non-recursive) for "<stem>.md" files and
// merges parsed templates into dst under the given scope, overwriting
// any entry already present for the same canonical stem (later loads
// take precedence).
func (l *Loader) LoadDirectory(dir string, scope Scope, dst map[string]*RoleDefinition) []error {
	var errs []error
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return []error{fmt.Errorf("read dir %s: %w", dir, err)}
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".md") {
			continue
		}
		if strings.EqualFold(name, "AGENTS.md") {
			continue // reserved filename
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("read %s: %w", path, err))
			continue
		}
		stem := NormalizeStem(strings.TrimSuffix(name, filepath.Ext(name)))
		if !IsValidStem(stem) {
			errs = append(errs, &ParseError{Path: path, Reason: fmt.Sprintf("invalid stem %q", stem)})
			continue
		}
		def, err := Parse(path, stem, string(data), scope)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		dst[CanonicalKey(stem)] = def
	}
	return errs
}

// SeedUserDirectory writes every built-in template file into dir, but
// only if dir exists and currently contains no file matching any
// built-in stem. Existing files are never overwritten. No-op under
// testMode. Seeding is per-file atomic (write to temp, rename).
func (l *Loader) SeedUserDirectory(dir string, testMode bool) error {
	if testMode {
		return nil
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil
	}
	entries, err := fs.ReadDir(bundledFS, "bundled")
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if _, err := os.Stat(filepath.Join(dir, entry.Name())); err == nil {
			return nil // already seeded (fully or partly)
		}
	}
	for _, entry := range entries {
		dstPath := filepath.Join(dir, entry.Name())
		if _, err := os.Stat(dstPath); err == nil {
			continue // never overwrite
		}
		data, err := bundledFS.ReadFile("bundled/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read bundled %s: %w", entry.Name(), err)
		}
		tmp := dstPath + ".tmp"
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			return fmt.Errorf("write temp seed file: %w", err)
		}
		if err := os.Rename(tmp, dstPath); err != nil {
			return fmt.Errorf("rename seed file: %w", err)
		}
	}
	return nil
}
