// Package kernel implements the PolicyGuard authorization pipeline: the
// trust boundary that every tool-call from a local model, a cloud model,
// or the human user must cross before a side-effecting tool runs.
//
// The package is deliberately self-contained. It reads immutable policy
// tables and a caller-supplied AppState snapshot; it never executes a
// tool, never logs, and never persists anything across calls.
package kernel

// Platform identifies the host operating system the kernel is running on.
// Fixed for the lifetime of the process.
type Platform string

const (
	PlatformLinux   Platform = "linux"
	PlatformMacOS   Platform = "macos"
	PlatformWindows Platform = "windows"
)

// UserRole is the authenticated session's privilege tier. Only used to
// widen the AppAllowlist; it never affects ToolPolicy.
type UserRole string

const (
	RoleStandard UserRole = "standard"
	RoleAdmin    UserRole = "admin"
)

// ToolScope identifies who originated a ToolCall.
type ToolScope string

const (
	ScopeLocalAI    ToolScope = "local_ai"
	ScopeCloudAI    ToolScope = "cloud_ai"
	ScopeUserDirect ToolScope = "user_direct"
)

// Params is the schemaless structured payload carried by a ToolCall. It
// models the "tagged tree" the design notes call for: named fields of
// mixed dynamic type, accessed with explicit presence and type checks
// rather than per-tool structs. Per-tool strong typing belongs in the
// executors, not here.
type Params map[string]any

// String returns the named field as a string, and whether it was present
// and actually a string. A present-but-wrong-type field reports ok=false,
// the same as a missing one, so callers treat both as an Invalid call.
func (p Params) String(key string) (string, bool) {
	v, present := p[key]
	if !present {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// StringSlice returns the named field as a []string. Accepts both a
// native []string (constructed in-process, e.g. by tests) and a []any of
// strings (the shape produced by decoding JSON into Params).
func (p Params) StringSlice(key string) ([]string, bool) {
	v, present := p[key]
	if !present {
		return nil, false
	}
	switch vv := v.(type) {
	case []string:
		return vv, true
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// FirstString returns the first present field, in the given precedence
// order, that is also a string. Used by SafePath's single-field legacy
// lookup (kept for callers that intentionally want one field only).
func (p Params) FirstString(keys ...string) (key, value string, ok bool) {
	for _, k := range keys {
		if s, present := p.String(k); present {
			return k, s, true
		}
	}
	return "", "", false
}

// ToolCall is a single authorization request. It is produced once by the
// request ingress and consumed exactly once by PolicyGuard; it is treated
// as immutable through authorization.
type ToolCall struct {
	// ID is an opaque non-empty identifier used to key confirmation state.
	ID string

	// ToolName is drawn from the closed tool vocabulary (see the scope
	// tables in policy.go).
	ToolName string

	// Parameters is the dynamic payload; recognized fields are documented
	// per tool in spec.md §6.
	Parameters Params
}

// fileTouchingTools is the closed set of tools whose parameters route
// through SafePath.
var fileTouchingTools = map[string]bool{
	"read_file":       true,
	"write_file":      true,
	"delete_file":     true,
	"move_file":       true,
	"rename_file":     true,
	"copy_file":       true,
	"create_directory": true,
	"list_directory":  true,
}

// twoPathTools is the subset of file-touching tools that carry a source
// endpoint and a destination endpoint, both of which must resolve safely.
var twoPathTools = map[string]bool{
	"move_file":   true,
	"rename_file": true,
	"copy_file":   true,
}

// IsFileTouching reports whether tool routes through SafePath.
func IsFileTouching(tool string) bool { return fileTouchingTools[tool] }

// IsTwoPath reports whether tool has both a source and a destination.
func IsTwoPath(tool string) bool { return twoPathTools[tool] }
