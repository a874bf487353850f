// Package roletemplate parses role/template markdown files (YAML
// frontmatter plus a body partitioned into a default instruction block
// and zero or more named persona blocks) into strict RoleDefinition
// values.
package roletemplate

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/odvcencio/subagentkit/pkg/toolpolicy"
)

// Scope records where a role definition was discovered.
type Scope int

const (
	ScopeRepo Scope = iota
	ScopeUser
	ScopeSystem
)

// Rank returns the sort precedence of the scope: Repo=0 < User=1 < System=2.
func (s Scope) Rank() int { return int(s) }

func (s Scope) String() string {
	switch s {
	case ScopeRepo:
		return "repo"
	case ScopeUser:
		return "user"
	case ScopeSystem:
		return "system"
	default:
		return "unknown"
	}
}

// ReasoningEffort mirrors the closed set of reasoning-effort levels a
// persona or role may declare.
type ReasoningEffort string

const (
	ReasoningNone   ReasoningEffort = ""
	ReasoningMin    ReasoningEffort = "minimal"
	ReasoningLow    ReasoningEffort = "low"
	ReasoningMedium ReasoningEffort = "medium"
	ReasoningHigh   ReasoningEffort = "high"
	ReasoningXHigh  ReasoningEffort = "xhigh"
)

// Color is one of the six named colors a role may declare for UI display.
type Color string

const (
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorPurple Color = "purple"
	ColorCyan   Color = "cyan"
)

var validColors = map[Color]bool{
	ColorRed: true, ColorBlue: true, ColorGreen: true,
	ColorYellow: true, ColorPurple: true, ColorCyan: true,
}

// Persona is a named variant within a role: an alternate instruction
// block with optional model/effort overrides.
type Persona struct {
	Name             string
	Description      string
	Instructions     string
	Model            string
	ReasoningEffort  ReasoningEffort
}

// RoleDefinition is a fully parsed, validated role template.
type RoleDefinition struct {
	Name                string
	Stem                string // filename-derived stem, distinct from the declared Name
	Description         string
	Model               string
	ReasoningEffort     ReasoningEffort
	Color               Color
	ToolsAllow          []string
	ToolsDeny           []string
	ReadOnly            bool
	DefaultInstructions string
	NamedPersonas       map[string]*Persona
	PersonaOrder        []string // declaration order, for stable display
	Scope               Scope
	SourcePath          string
}

// frontmatter mirrors the recognised YAML keys from the external
// interface: name, description, model, reasoning_effort, color,
// tools/allow_list, tool_denylist/deny_list, read_only, agent_names.
type frontmatter struct {
	Name            string           `yaml:"name"`
	Description     string           `yaml:"description"`
	Model           string           `yaml:"model"`
	ReasoningEffort string           `yaml:"reasoning_effort"`
	Color           string           `yaml:"color"`
	Tools           yamlStringList   `yaml:"tools"`
	AllowList       yamlStringList   `yaml:"allow_list"`
	ToolDenylist    yamlStringList   `yaml:"tool_denylist"`
	DenyList        yamlStringList   `yaml:"deny_list"`
	ReadOnly        bool             `yaml:"read_only"`
	AgentNames      []agentNameEntry `yaml:"agent_names"`
}

type agentNameEntry struct {
	Name            string `yaml:"name"`
	Description     string `yaml:"description"`
	Model           string `yaml:"model"`
	ReasoningEffort string `yaml:"reasoning_effort"`
}

// yamlStringList accepts either a single scalar string or a YAML
// sequence of strings, matching the external interface's "string or
// list" contract for tools/allow_list/tool_denylist/deny_list.
type yamlStringList []string

func (l *yamlStringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		if s == "" {
			*l = nil
			return nil
		}
		*l = yamlStringList{s}
		return nil
	case yaml.SequenceNode:
		var s []string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*l = yamlStringList(s)
		return nil
	default:
		return fmt.Errorf("expected scalar or sequence for string list")
	}
}

const agentNameMarkerPrefix = "<!-- agent_name: "
const agentNameMarkerSuffix = " -->"

// ParseError describes a single template file's parse failure. Parse
// errors are collected per-file by the registry, never raised, so a
// broken template simply drops out of the agent list rather than
// aborting discovery.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// Parse parses raw markdown content (frontmatter + body) for the file at
// path into a RoleDefinition. stem is the filename-derived name to use
// when the frontmatter omits "name" (template-store lookups key off the
// filename stem, not a required frontmatter field).
func Parse(path, stem, content string, scope Scope) (*RoleDefinition, error) {
	fm, body, err := splitFrontmatter(content)
	if err != nil {
		// Missing/unterminated frontmatter: treat the whole file as
		// default instructions (back-compat mode).
		instructions := strings.TrimSpace(content)
		if instructions == "" {
			return nil, &ParseError{Path: path, Reason: "empty file and no frontmatter"}
		}
		return &RoleDefinition{
			Name:                stem,
			Stem:                stem,
			Description:         "",
			DefaultInstructions: instructions,
			NamedPersonas:       map[string]*Persona{},
			Scope:               scope,
			SourcePath:          path,
		}, nil
	}

	var meta frontmatter
	if err := yaml.Unmarshal([]byte(fm), &meta); err != nil {
		return nil, &ParseError{Path: path, Reason: fmt.Sprintf("invalid frontmatter yaml: %v", err)}
	}

	name := strings.TrimSpace(meta.Name)
	if name == "" {
		name = stem
	}

	defaultBlock, personaBlocks, err := splitAgentNameBlocks(body)
	if err != nil {
		return nil, &ParseError{Path: path, Reason: err.Error()}
	}

	declared := map[string]agentNameEntry{}
	var order []string
	for _, e := range meta.AgentNames {
		key := strings.TrimSpace(e.Name)
		if !IsValidStem(key) {
			return nil, &ParseError{Path: path, Reason: fmt.Sprintf("invalid agent_names entry name %q", e.Name)}
		}
		declared[key] = e
		order = append(order, key)
	}

	for name := range declared {
		if _, ok := personaBlocks[name]; !ok {
			return nil, &ParseError{Path: path, Reason: fmt.Sprintf("invalid agent_names: missing agent_name block for %q", name)}
		}
	}
	for name := range personaBlocks {
		if _, ok := declared[name]; !ok {
			return nil, &ParseError{Path: path, Reason: fmt.Sprintf("invalid agent_names: body block %q has no matching agent_names entry", name)}
		}
	}

	if strings.TrimSpace(meta.Description) == "" {
		return nil, &ParseError{Path: path, Reason: "description is required"}
	}
	if strings.TrimSpace(defaultBlock) == "" {
		return nil, &ParseError{Path: path, Reason: "default instructions must not be empty"}
	}

	personas := map[string]*Persona{}
	for key, entry := range declared {
		if strings.TrimSpace(entry.Description) == "" {
			return nil, &ParseError{Path: path, Reason: fmt.Sprintf("persona %q: description is required", key)}
		}
		instructions := strings.TrimSpace(personaBlocks[key])
		if instructions == "" {
			return nil, &ParseError{Path: path, Reason: fmt.Sprintf("persona %q: instructions must not be empty", key)}
		}
		personas[key] = &Persona{
			Name:            key,
			Description:     strings.TrimSpace(entry.Description),
			Instructions:    instructions,
			Model:           strings.TrimSpace(entry.Model),
			ReasoningEffort: ReasoningEffort(strings.ToLower(strings.TrimSpace(entry.ReasoningEffort))),
		}
	}

	color := Color(strings.ToLower(strings.TrimSpace(meta.Color)))
	if color != "" && !validColors[color] {
		return nil, &ParseError{Path: path, Reason: fmt.Sprintf("invalid color %q", meta.Color)}
	}

	allow := mergeToolLists(meta.Tools, meta.AllowList)
	deny := mergeToolLists(meta.ToolDenylist, meta.DenyList)

	return &RoleDefinition{
		Name:                name,
		Stem:                stem,
		Description:         strings.TrimSpace(meta.Description),
		Model:               strings.TrimSpace(meta.Model),
		ReasoningEffort:     ReasoningEffort(strings.ToLower(strings.TrimSpace(meta.ReasoningEffort))),
		Color:               color,
		ToolsAllow:          toolpolicy.Normalize(allow),
		ToolsDeny:           toolpolicy.Normalize(deny),
		ReadOnly:            meta.ReadOnly,
		DefaultInstructions: strings.TrimSpace(defaultBlock),
		NamedPersonas:       personas,
		PersonaOrder:        order,
		Scope:               scope,
		SourcePath:          path,
	}, nil
}

// Validate enforces the strict RoleDefinition invariants from the data
// model: name length/charset, description length, non-empty
// instructions for the role and every persona.
func (r *RoleDefinition) Validate() error {
	if !isValidRoleName(r.Name) {
		return fmt.Errorf("role name %q must be 3-64 chars matching [a-z0-9][a-z0-9-]*[a-z0-9]", r.Name)
	}
	if len(r.Description) > 4096 {
		return fmt.Errorf("role %q: description exceeds 4096 chars", r.Name)
	}
	if strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("role %q: description must not be empty", r.Name)
	}
	if strings.TrimSpace(r.DefaultInstructions) == "" {
		return fmt.Errorf("role %q: default_instructions must not be empty", r.Name)
	}
	for name, p := range r.NamedPersonas {
		if strings.TrimSpace(p.Instructions) == "" {
			return fmt.Errorf("role %q: persona %q instructions must not be empty", r.Name, name)
		}
	}
	return nil
}

func isValidRoleName(s string) bool {
	if len(s) < 3 || len(s) > 64 {
		return false
	}
	runes := []rune(s)
	first, last := runes[0], runes[len(runes)-1]
	if !isAlphaNum(first) || !isAlphaNum(last) {
		return false
	}
	for _, r := range runes {
		if !isAlphaNum(r) && r != '-' {
			return false
		}
	}
	return true
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

func mergeToolLists(a, b yamlStringList) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// splitFrontmatter splits content between the first two "---" delimiter
// lines. Returns an error if the frontmatter is missing or unterminated.
func splitFrontmatter(content string) (fm string, body string, err error) {
	const delim = "---"
	trimmed := strings.TrimLeft(content, "\n")
	if !strings.HasPrefix(trimmed, delim) {
		return "", "", fmt.Errorf("no frontmatter delimiter")
	}
	rest := trimmed[len(delim):]
	idx := strings.Index(rest, "\n"+delim)
	if idx == -1 {
		return "", "", fmt.Errorf("unterminated frontmatter")
	}
	fm = strings.TrimSpace(rest[:idx])
	afterSecondDelim := rest[idx+1+len(delim):]
	// consume the rest of the delimiter line itself
	if nl := strings.Index(afterSecondDelim, "\n"); nl != -1 {
		body = afterSecondDelim[nl+1:]
	} else {
		body = ""
	}
	return fm, body, nil
}

// splitAgentNameBlocks partitions body into the default instruction
// block and a map of persona-name -> block, splitting on
// "<!-- agent_name: NAME -->" marker lines (markers are consumed, not
// included in any block).
func splitAgentNameBlocks(body string) (string, map[string]string, error) {
	lines := strings.Split(body, "\n")
	blockLines := map[string][]string{}
	var defaultLines []string
	currentName := "" // "" denotes the default block

	for _, line := range lines {
		trimmedLine := strings.TrimSpace(line)
		if strings.HasPrefix(trimmedLine, agentNameMarkerPrefix) && strings.HasSuffix(trimmedLine, agentNameMarkerSuffix) {
			name := strings.TrimSpace(trimmedLine[len(agentNameMarkerPrefix) : len(trimmedLine)-len(agentNameMarkerSuffix)])
			if !IsValidStem(name) {
				return "", nil, fmt.Errorf("invalid agent_name marker %q", name)
			}
			currentName = name
			if _, ok := blockLines[name]; !ok {
				blockLines[name] = nil
			}
			continue
		}
		if currentName == "" {
			defaultLines = append(defaultLines, line)
		} else {
			blockLines[currentName] = append(blockLines[currentName], line)
		}
	}

	blocks := make(map[string]string, len(blockLines))
	for name, ls := range blockLines {
		blocks[name] = strings.Join(ls, "\n")
	}

	return strings.Join(defaultLines, "\n"), blocks, nil
}

// NormalizeStem trims, lowercases, and NFC-normalises a candidate stem.
func NormalizeStem(stem string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(stem)))
}

// CanonicalKey maps a normalised stem to its lookup key, where '-' and
// '_' are treated as equivalent: "foo-bar" and "foo_bar" canonicalise to
// the same key.
func CanonicalKey(stem string) string {
	return strings.ReplaceAll(NormalizeStem(stem), "-", "_")
}

// IsValidStem reports whether s is non-empty and contains only lowercase
// ascii letters, digits, underscore, and hyphen.
func IsValidStem(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}
