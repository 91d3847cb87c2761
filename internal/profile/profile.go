// Package profile implements tool profiles: named, subtract-only overlays
// on top of a ToolScope's base ToolPolicy. A profile can only narrow what
// a scope may call, never widen it — it has no Allow list, only Deny,
// because widening the kernel's fixed policy tables would undermine the
// trust boundary Authorize enforces.
package profile

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/jholhewres/policyguard/pkg/kernel"
)

// Profile names a set of additionally-denied tools layered on a scope.
type Profile struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Deny        []string `yaml:"deny"`
}

// BuiltIn holds the presets every installation ships with, scoped to
// PolicyGuard's closed tool vocabulary.
var BuiltIn = map[string]Profile{
	"full": {
		Name:        "full",
		Description: "No additional restriction beyond the base ToolPolicy table.",
		Deny:        nil,
	},
	"read_only": {
		Name:        "read_only",
		Description: "Blocks every tool that can mutate files, processes, or apps.",
		Deny: []string{
			"write_file", "delete_file", "move_file", "rename_file", "copy_file",
			"create_directory", "run_command", "kill_process", "launch_app",
		},
	},
	"no_exec": {
		Name:        "no_exec",
		Description: "Blocks command execution and process control, keeps file and layout tools.",
		Deny:        []string{"run_command", "kill_process"},
	},
	"locked_down": {
		Name:        "locked_down",
		Description: "Read-only file access, window layout tools, and download listing only.",
		Deny: []string{
			"write_file", "delete_file", "move_file", "rename_file", "copy_file",
			"create_directory", "run_command", "kill_process", "launch_app",
			"download_archive_org", "download_youtube", "pause_download",
			"resume_download", "cancel_download",
		},
	},
}

// Store holds custom profiles loaded from disk, merged with BuiltIn at
// lookup time. Built-ins always win on a name collision — operators
// cannot widen a deny list back open by shadowing its name.
type Store struct {
	mu     sync.RWMutex
	path   string
	custom map[string]Profile
}

// NewStore creates a Store backed by the given profiles.yaml path. Load
// must be called before Resolve will see any custom profiles.
func NewStore(path string) *Store {
	return &Store{path: path, custom: make(map[string]Profile)}
}

// Load reads profiles.yaml. A missing file is not an error: Store simply
// falls back to BuiltIn only.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading profiles file: %w", err)
	}

	var doc struct {
		Profiles map[string]Profile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing profiles yaml: %w", err)
	}
	if doc.Profiles == nil {
		doc.Profiles = make(map[string]Profile)
	}
	s.custom = doc.Profiles
	return nil
}

// Resolve returns the named profile, built-ins taking precedence over
// custom definitions of the same name.
func (s *Store) Resolve(name string) (Profile, bool) {
	if p, ok := BuiltIn[name]; ok {
		return p, true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.custom[name]
	return p, ok
}

// Names lists every known profile name, built-in and custom.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(BuiltIn)+len(s.custom))
	for n := range BuiltIn {
		names = append(names, n)
	}
	for n := range s.custom {
		if _, isBuiltin := BuiltIn[n]; !isBuiltin {
			names = append(names, n)
		}
	}
	return names
}

// Apply returns a copy of base with the profile's Deny list subtracted
// from both AllowedTools and RequiresConfirmation. It never adds a tool
// that base did not already permit.
func Apply(base kernel.ToolPolicy, p Profile) kernel.ToolPolicy {
	out := kernel.ToolPolicy{
		AllowedTools:         make(map[string]bool, len(base.AllowedTools)),
		RequiresConfirmation: make(map[string]bool, len(base.RequiresConfirmation)),
	}
	denied := make(map[string]bool, len(p.Deny))
	for _, t := range p.Deny {
		denied[t] = true
	}
	for t, allowed := range base.AllowedTools {
		if allowed && !denied[t] {
			out.AllowedTools[t] = true
		}
	}
	for t, needs := range base.RequiresConfirmation {
		if needs && out.AllowedTools[t] {
			out.RequiresConfirmation[t] = true
		}
	}
	return out
}
