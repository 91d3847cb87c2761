package kernel

import "sync"

// Config is the collaborator-supplied configuration snapshot PolicyGuard
// reads. SafeDirectories is treated as read-only for the process lifetime;
// reconfiguration requires a restart (spec.md §5).
type Config struct {
	SafeDirectories []string
}

// ConfirmationRegistry maps a ToolCall.ID to a confirmed boolean. It is
// concurrently mutated by the confirmation UI and read by the guard; the
// guard never re-queries after a successful authorize, so a confirmation
// valid at check time is not guaranteed to remain valid at execute time
// (spec.md §9, "Confirmation TOCTOU" — accepted by design).
type ConfirmationRegistry struct {
	mu        sync.RWMutex
	confirmed map[string]bool
}

// NewConfirmationRegistry returns an empty, ready-to-use registry.
func NewConfirmationRegistry() *ConfirmationRegistry {
	return &ConfirmationRegistry{confirmed: make(map[string]bool)}
}

// IsConfirmed reports the registered confirmation state for id. Unknown
// ids are unconfirmed.
func (r *ConfirmationRegistry) IsConfirmed(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.confirmed[id]
}

// Confirm registers id as confirmed. Called by the confirmation UI
// out-of-band from authorize.
func (r *ConfirmationRegistry) Confirm(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.confirmed[id] = true
}

// Revoke clears any confirmation for id.
func (r *ConfirmationRegistry) Revoke(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.confirmed, id)
}

// AppState is the ambient-state contract PolicyGuard depends on. It is
// supplied by the host application, never constructed by the kernel.
type AppState interface {
	CurrentToolScope() ToolScope
	CurrentUserRole() UserRole
	Platform() Platform
	Config() Config
	Confirmations() *ConfirmationRegistry
	// PolicyOverride is applied to the scope's base ToolPolicy before
	// Authorize evaluates it, letting the host narrow what a scope may do
	// (a tool profile, for instance) without the kernel knowing anything
	// about where that narrowing came from. Implementations must never
	// widen what base already permits.
	PolicyOverride(base ToolPolicy) ToolPolicy
}

// StaticState is a simple, concurrency-safe AppState implementation
// suitable for a single-process desktop workstation: scope and role are
// set per-call by the ingress (see SetScope/SetRole), platform and config
// are fixed at construction.
type StaticState struct {
	mu       sync.RWMutex
	scope    ToolScope
	role     UserRole
	platform Platform
	cfg      Config
	confirms *ConfirmationRegistry
	override func(ToolPolicy) ToolPolicy
}

// NewStaticState builds a StaticState for platform with the given safe
// directories. Scope defaults to ScopeUserDirect and role to RoleStandard
// until set.
func NewStaticState(platform Platform, safeDirs []string) *StaticState {
	return &StaticState{
		scope:    ScopeUserDirect,
		role:     RoleStandard,
		platform: platform,
		cfg:      Config{SafeDirectories: append([]string(nil), safeDirs...)},
		confirms: NewConfirmationRegistry(),
	}
}

func (s *StaticState) CurrentToolScope() ToolScope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scope
}

func (s *StaticState) CurrentUserRole() UserRole {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

func (s *StaticState) Platform() Platform { return s.platform }

func (s *StaticState) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *StaticState) Confirmations() *ConfirmationRegistry { return s.confirms }

// PolicyOverride applies the narrowing function set by SetPolicyOverride,
// if any, or returns base unchanged.
func (s *StaticState) PolicyOverride(base ToolPolicy) ToolPolicy {
	s.mu.RLock()
	fn := s.override
	s.mu.RUnlock()
	if fn == nil {
		return base
	}
	return fn(base)
}

// SetPolicyOverride installs fn as the narrowing function future Authorize
// calls against this state run the scope's base ToolPolicy through. Pass
// nil to remove any override and fall back to the scope's base policy
// unmodified.
func (s *StaticState) SetPolicyOverride(fn func(ToolPolicy) ToolPolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.override = fn
}

// SetScope updates the active scope for the next authorize call. Intended
// for an ingress that serializes one ToolCall at a time per operator
// session; concurrent operators should use distinct AppState instances.
func (s *StaticState) SetScope(scope ToolScope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scope = scope
}

// SetRole updates the active role.
func (s *StaticState) SetRole(role UserRole) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.role = role
}

// SetSafeDirectories replaces the configured safe directories.
func (s *StaticState) SetSafeDirectories(dirs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.SafeDirectories = append([]string(nil), dirs...)
}
