package config

import (
	"os"
	"path/filepath"
)

// ResolveProjectRoot returns the absolute working directory this core's
// root thread should operate in, falling back to "." if os.Getwd fails.
func ResolveProjectRoot() string {
	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}
	return "."
}

// ResolveRegistryProjectDirs returns cfg's configured project registry
// roots, resolved to absolute paths relative to root.
func ResolveRegistryProjectDirs(cfg *Config, root string) []string {
	if cfg == nil || len(cfg.Registry.ProjectDirs) == 0 {
		return nil
	}
	out := make([]string, 0, len(cfg.Registry.ProjectDirs))
	for _, dir := range cfg.Registry.ProjectDirs {
		if filepath.IsAbs(dir) {
			out = append(out, dir)
			continue
		}
		out = append(out, filepath.Join(root, dir))
	}
	return out
}
