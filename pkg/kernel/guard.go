package kernel

import "fmt"

// Authorize is the single PolicyGuard entrypoint. It composes ToolPolicy,
// SafePath, CommandAllowlist, and AppAllowlist in a fixed order that never
// changes: each step short-circuits so that a tool the operator may not
// call never exposes its parameter validators to adversarial input, and a
// call that needs confirmation is gated before its parameters are picked
// apart (spec.md §4.5).
//
// Authorize is purely functional at the call site: one synchronous
// evaluation over immutable policy tables and a snapshot read of the
// confirmation registry. It never blocks and takes no lock of its own.
func Authorize(call ToolCall, state AppState) error {
	if call.ID == "" {
		return Invalid("tool call id must not be empty")
	}
	if call.ToolName == "" {
		return Invalid("tool call must name a tool")
	}

	// 1. Resolve scope and its policy, then let the host narrow it (a tool
	// profile, for instance) via PolicyOverride. Authorize uses the
	// override's result as is and does not check it against PolicyFor;
	// profile.Apply, the only override this codebase installs, only
	// subtracts.
	scope := state.CurrentToolScope()
	policy := state.PolicyOverride(PolicyFor(scope))

	// 2. Scope-level allowlist check, first and unconditional.
	if !policy.AllowedTools[call.ToolName] {
		return Denied(fmt.Sprintf("tool %q is not allowed for scope %q", call.ToolName, scope))
	}

	// 3. Confirmation gate precedes parameter validation by design
	// (spec.md §9 Open Question: preserved as specified).
	if policy.RequiresConfirmation[call.ToolName] {
		if !state.Confirmations().IsConfirmed(call.ID) {
			return NeedsConfirmation()
		}
	}

	// 4. File-touching tools delegate to SafePath.
	if IsFileTouching(call.ToolName) {
		safeDirs := state.Config().SafeDirectories
		if IsTwoPath(call.ToolName) {
			if err := validateTwoPaths(call.Parameters, safeDirs); err != nil {
				return err
			}
		} else if _, err := ResolveSafePathFromParams(call.Parameters, safeDirs); err != nil {
			return err
		}
	}

	// 5. run_command delegates to CommandAllowlist.
	if call.ToolName == "run_command" {
		if err := ValidateCommandParams(call.Parameters); err != nil {
			return err
		}
	}

	// 6. launch_app delegates to AppAllowlist.
	if call.ToolName == "launch_app" {
		appID, ok := call.Parameters.String("app_id")
		if !ok {
			return Invalid("missing or non-string \"app_id\" parameter")
		}
		role := state.CurrentUserRole()
		if !IsAppAllowed(appID, role, state.Platform()) {
			return Denied("App not allowlisted")
		}
	}

	return nil
}

// validateTwoPaths resolves both the source and destination endpoints of
// a move/rename/copy. This fixes the Open Question spec.md §9 flags as a
// bug: both endpoints must resolve safely, not just the first present
// field among {path, source, destination, dest}.
func validateTwoPaths(p Params, safeDirs []string) error {
	_, src, ok := p.FirstString("path", "source")
	if !ok {
		return Invalid("no path/source parameter present")
	}
	if _, err := ResolveSafePath(src, safeDirs); err != nil {
		return err
	}

	_, dst, ok := p.FirstString("destination", "dest")
	if !ok {
		return Invalid("no destination/dest parameter present")
	}
	if _, err := ResolveSafePath(dst, safeDirs); err != nil {
		return err
	}

	return nil
}
