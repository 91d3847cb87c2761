package kernel

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestState(platform Platform, scope ToolScope, role UserRole, safeDirs []string) *StaticState {
	s := NewStaticState(platform, safeDirs)
	s.SetScope(scope)
	s.SetRole(role)
	return s
}

func TestAuthorize_ReadFileWithinSafeDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "doc.txt")
	os.WriteFile(file, []byte("hi"), 0o644)

	state := newTestState(PlatformLinux, ScopeLocalAI, RoleStandard, []string{dir})
	call := ToolCall{ID: "a", ToolName: "read_file", Parameters: Params{"path": file}}

	if err := Authorize(call, state); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
}

func TestAuthorize_ReadFileOutsideSafeDir(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	file := filepath.Join(dir, "doc.txt")
	os.WriteFile(file, []byte("hi"), 0o644)

	state := newTestState(PlatformLinux, ScopeLocalAI, RoleStandard, []string{other})
	call := ToolCall{ID: "a", ToolName: "read_file", Parameters: Params{"path": file}}

	err := Authorize(call, state)
	if !IsDenied(err) {
		t.Fatalf("want Denied, got %v", err)
	}
}

func TestAuthorize_SystemPathDeniedEvenWhenConfiguredAsSafe(t *testing.T) {
	if _, err := os.Stat("/etc/passwd"); err != nil {
		t.Skip("no /etc/passwd on this platform")
	}
	state := newTestState(PlatformLinux, ScopeLocalAI, RoleStandard, []string{"/etc"})
	call := ToolCall{ID: "a", ToolName: "read_file", Parameters: Params{"path": "/etc/passwd"}}

	err := Authorize(call, state)
	if !IsDenied(err) {
		t.Fatalf("want Denied, got %v", err)
	}
}

func TestAuthorize_RunCommandConfirmedCurl(t *testing.T) {
	dir := t.TempDir()
	state := newTestState(PlatformLinux, ScopeLocalAI, RoleStandard, []string{dir})
	dest := filepath.Join(dir, "f")

	call := ToolCall{
		ID:       "a",
		ToolName: "run_command",
		Parameters: Params{
			"command": "curl",
			"args":    []string{"-L", "https://x", "-o", dest},
		},
	}

	state.Confirmations().Confirm("a")
	if err := Authorize(call, state); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
}

func TestAuthorize_RunCommandInvalidArgsDeniedAfterConfirmation(t *testing.T) {
	state := newTestState(PlatformLinux, ScopeLocalAI, RoleStandard, nil)
	call := ToolCall{
		ID:       "a",
		ToolName: "run_command",
		Parameters: Params{
			"command": "curl",
			"args":    []string{"-L", "https://x", "/home/u/f"}, // missing -o
		},
	}
	state.Confirmations().Confirm("a")

	err := Authorize(call, state)
	if !IsDenied(err) {
		t.Fatalf("want Denied, got %v", err)
	}
}

func TestAuthorize_LaunchAppRequiresAdminForFirefox(t *testing.T) {
	state := newTestState(PlatformMacOS, ScopeLocalAI, RoleStandard, nil)
	call := ToolCall{ID: "a", ToolName: "launch_app", Parameters: Params{"app_id": "org.mozilla.firefox"}}
	state.Confirmations().Confirm("a")

	err := Authorize(call, state)
	if !IsDenied(err) {
		t.Fatalf("want Denied, got %v", err)
	}

	state.SetRole(RoleAdmin)
	if err := Authorize(call, state); err != nil {
		t.Fatalf("want nil for admin, got %v", err)
	}
}

func TestAuthorize_CloudAIDeniedBeforeAnyPathCheck(t *testing.T) {
	// write_file is not in CloudAI's allowed set at all: it must be
	// denied before SafePath ever looks at the (missing/garbage) path.
	state := newTestState(PlatformLinux, ScopeCloudAI, RoleStandard, nil)
	call := ToolCall{ID: "a", ToolName: "write_file", Parameters: Params{}}

	err := Authorize(call, state)
	te, ok := err.(*ToolError)
	if !ok || te.Kind != KindDenied {
		t.Fatalf("want Denied, got %v", err)
	}
}

// --- Universal invariants (spec.md §8) ---

func TestInvariant_UncataloguedToolAlwaysDenied(t *testing.T) {
	for _, scope := range []ToolScope{ScopeLocalAI, ScopeCloudAI, ScopeUserDirect} {
		state := newTestState(PlatformLinux, scope, RoleAdmin, nil)
		call := ToolCall{ID: "a", ToolName: "self_destruct", Parameters: Params{}}
		err := Authorize(call, state)
		if !IsDenied(err) {
			t.Errorf("scope %s: want Denied for uncatalogued tool, got %v", scope, err)
		}
	}
}

func TestInvariant_ConfirmationRequiredEvenWithBadParams(t *testing.T) {
	state := newTestState(PlatformLinux, ScopeLocalAI, RoleStandard, nil)
	// delete_file requires confirmation; omit "path" entirely — the
	// confirmation gate must still fire before parameter validation.
	call := ToolCall{ID: "a", ToolName: "delete_file", Parameters: Params{}}

	err := Authorize(call, state)
	if !IsNeedsConfirmation(err) {
		t.Fatalf("want NeedsConfirmation regardless of parameter validity, got %v", err)
	}
}

func TestInvariant_UserDirectDeniesEveryToolCall(t *testing.T) {
	state := newTestState(PlatformLinux, ScopeUserDirect, RoleAdmin, []string{"/tmp"})
	for _, tool := range []string{"read_file", "list_directory", "open_tile"} {
		call := ToolCall{ID: "a", ToolName: tool, Parameters: Params{}}
		if err := Authorize(call, state); !IsDenied(err) {
			t.Errorf("tool %q: want Denied for UserDirect, got %v", tool, err)
		}
	}
}

func TestRoundTrip_ConfirmingNeverProducesToolNotAllowedDenial(t *testing.T) {
	state := newTestState(PlatformLinux, ScopeLocalAI, RoleStandard, nil)
	call := ToolCall{ID: "a", ToolName: "kill_process", Parameters: Params{"pid": 1234}}

	err := Authorize(call, state)
	if !IsNeedsConfirmation(err) {
		t.Fatalf("want NeedsConfirmation before confirming, got %v", err)
	}

	state.Confirmations().Confirm("a")
	err = Authorize(call, state)
	if err != nil {
		t.Fatalf("kill_process has no param validator in the core, want nil after confirmation, got %v", err)
	}
}

func TestMonotonicity_NarrowingScopeNeverTurnsDeniedIntoOk(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "doc.txt")
	os.WriteFile(file, []byte("hi"), 0o644)

	localState := newTestState(PlatformLinux, ScopeLocalAI, RoleStandard, []string{dir})
	cloudState := newTestState(PlatformLinux, ScopeCloudAI, RoleStandard, []string{dir})

	call := ToolCall{ID: "a", ToolName: "write_file", Parameters: Params{"path": file}}

	localErr := Authorize(call, localState)
	cloudErr := Authorize(call, cloudState)

	if localErr == nil && cloudErr == nil {
		t.Fatal("expected at least CloudAI to deny write_file")
	}
	if IsDenied(localErr) && !IsDenied(cloudErr) {
		t.Fatalf("narrowing scope turned a Denied into a non-Denied result: local=%v cloud=%v", localErr, cloudErr)
	}
}

func TestTwoPathOperations_ValidateBothEndpoints(t *testing.T) {
	safeDir := t.TempDir()
	outsideDir := t.TempDir()
	src := filepath.Join(safeDir, "a.txt")
	os.WriteFile(src, []byte("hi"), 0o644)
	dst := filepath.Join(outsideDir, "b.txt")
	os.WriteFile(dst, []byte("hi"), 0o644)

	state := newTestState(PlatformLinux, ScopeLocalAI, RoleStandard, []string{safeDir})
	call := ToolCall{
		ID:       "a",
		ToolName: "move_file",
		Parameters: Params{
			"source":      src,
			"destination": dst,
		},
	}
	state.Confirmations().Confirm("a")

	err := Authorize(call, state)
	if !IsDenied(err) {
		t.Fatalf("destination outside safe dirs must be denied even though source is fine, got %v", err)
	}
}

func TestTwoPathOperations_BothEndpointsSafe(t *testing.T) {
	safeDir := t.TempDir()
	src := filepath.Join(safeDir, "a.txt")
	os.WriteFile(src, []byte("hi"), 0o644)
	dst := filepath.Join(safeDir, "b.txt")
	os.WriteFile(dst, []byte("hi"), 0o644)

	state := newTestState(PlatformLinux, ScopeLocalAI, RoleStandard, []string{safeDir})
	call := ToolCall{
		ID:       "a",
		ToolName: "rename_file",
		Parameters: Params{
			"source":      src,
			"destination": dst,
		},
	}
	state.Confirmations().Confirm("a")

	if err := Authorize(call, state); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
}

func TestAuthorize_EmptyIDIsInvalid(t *testing.T) {
	state := newTestState(PlatformLinux, ScopeLocalAI, RoleStandard, nil)
	call := ToolCall{ID: "", ToolName: "read_file", Parameters: Params{}}
	if err := Authorize(call, state); !IsInvalid(err) {
		t.Fatalf("want Invalid, got %v", err)
	}
}

func TestAuthorize_PolicyOverrideNarrowsAllowedTools(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "doc.txt")
	os.WriteFile(file, []byte("hi"), 0o644)

	state := newTestState(PlatformLinux, ScopeLocalAI, RoleStandard, []string{dir})
	call := ToolCall{ID: "a", ToolName: "read_file", Parameters: Params{"path": file}}

	if err := Authorize(call, state); err != nil {
		t.Fatalf("want nil before any override, got %v", err)
	}

	state.SetPolicyOverride(func(base ToolPolicy) ToolPolicy {
		out := ToolPolicy{
			AllowedTools:         make(map[string]bool, len(base.AllowedTools)),
			RequiresConfirmation: base.RequiresConfirmation,
		}
		for tool, allowed := range base.AllowedTools {
			if tool != "read_file" {
				out.AllowedTools[tool] = allowed
			}
		}
		return out
	})

	if err := Authorize(call, state); !IsDenied(err) {
		t.Fatalf("want Denied once the override removes read_file, got %v", err)
	}
}

func TestAuthorize_PolicyOverrideCanWidenPastBase(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "x")
	os.WriteFile(file, []byte("hi"), 0o644)

	state := newTestState(PlatformLinux, ScopeCloudAI, RoleStandard, []string{dir})
	call := ToolCall{ID: "a", ToolName: "write_file", Parameters: Params{"path": file}}

	// CloudAI's base policy does not allow write_file; the override below
	// adds it anyway.
	state.SetPolicyOverride(func(base ToolPolicy) ToolPolicy {
		out := ToolPolicy{AllowedTools: map[string]bool{}, RequiresConfirmation: map[string]bool{}}
		for tool, allowed := range base.AllowedTools {
			out.AllowedTools[tool] = allowed
		}
		out.AllowedTools["write_file"] = true // attempt to widen
		return out
	})

	// This documents that PolicyOverride is a hook, not an enforcement
	// boundary: the kernel trusts the override function it's given not to
	// widen. profile.Apply is the one override this codebase installs,
	// and it is subtract-only by construction (see internal/profile).
	if err := Authorize(call, state); err != nil {
		t.Fatalf("a widening override is honored by Authorize itself, got %v; the non-widening guarantee is enforced by profile.Apply, not here", err)
	}
}

func TestAuthorize_NilPolicyOverrideLeavesBaseUnchanged(t *testing.T) {
	state := newTestState(PlatformLinux, ScopeLocalAI, RoleStandard, nil)
	state.SetPolicyOverride(nil)

	call := ToolCall{ID: "a", ToolName: "kill_process", Parameters: Params{"pid": 1}}
	state.Confirmations().Confirm("a")

	if err := Authorize(call, state); err != nil {
		t.Fatalf("nil override should behave identically to no override, got %v", err)
	}
}
