// Package confirm implements the interactive side of the kernel's
// confirmation gate. When Authorize returns kernel.KindNeedsConfirmation,
// something has to ask the human at the keyboard before the registry is
// updated and the call is retried — this package is that something.
//
// The approval-then-retry shape (create a pending decision, block for the
// human, then let the caller re-run the authorization check) mirrors the
// teacher's ApprovalManager; the actual prompt is rendered with
// charmbracelet/huh instead of a chat round-trip, since PolicyGuard's
// operator sits at the same desktop as the AI it is gating.
package confirm

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/jholhewres/policyguard/pkg/kernel"
)

// Prompter asks the operator to approve or deny a single tool call.
type Prompter interface {
	Confirm(call kernel.ToolCall, reason string) (bool, error)
}

// TerminalPrompter renders a huh confirmation form on the controlling
// terminal. It refuses to prompt when stdin isn't a TTY, since a
// non-interactive process has no one to ask.
type TerminalPrompter struct{}

// NewTerminalPrompter returns a Prompter backed by the current terminal.
func NewTerminalPrompter() *TerminalPrompter { return &TerminalPrompter{} }

// Confirm renders the form and returns the operator's decision. It errors
// immediately, without prompting, if stdin is not attached to a terminal.
func (TerminalPrompter) Confirm(call kernel.ToolCall, reason string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, fmt.Errorf("confirm: stdin is not a terminal, cannot prompt for %q", call.ToolName)
	}

	var approved bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Allow %q?", call.ToolName)).
				Description(describeCall(call, reason)).
				Affirmative("Allow").
				Negative("Deny").
				Value(&approved),
		),
	)

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("confirm: running prompt: %w", err)
	}
	return approved, nil
}

// describeCall renders a short, human-readable summary of the call's
// parameters for the confirmation prompt.
func describeCall(call kernel.ToolCall, reason string) string {
	switch call.ToolName {
	case "delete_file", "read_file", "write_file":
		if path, ok := call.Parameters.String("path"); ok {
			return fmt.Sprintf("%s\npath: %s", reason, path)
		}
	case "move_file", "rename_file", "copy_file":
		_, src, _ := call.Parameters.FirstString("path", "source")
		_, dst, _ := call.Parameters.FirstString("destination", "dest")
		return fmt.Sprintf("%s\n%s -> %s", reason, src, dst)
	case "run_command":
		if cmd, ok := call.Parameters.String("command"); ok {
			args, _ := call.Parameters.StringSlice("args")
			return fmt.Sprintf("%s\n%s %v", reason, cmd, args)
		}
	case "kill_process":
		if pid, ok := call.Parameters["pid"]; ok {
			return fmt.Sprintf("%s\npid: %v", reason, pid)
		}
	case "launch_app":
		if appID, ok := call.Parameters.String("app_id"); ok {
			return fmt.Sprintf("%s\napp: %s", reason, appID)
		}
	}
	return reason
}

// Registry is the subset of kernel.ConfirmationRegistry this package
// needs — accepted as an interface so tests can substitute a fake without
// pulling in a full kernel.AppState.
type Registry interface {
	Confirm(id string)
}

// Gate resolves a kernel.KindNeedsConfirmation result by prompting the
// operator and, if approved, marking call.ID confirmed in reg. After Gate
// returns true, retry by re-invoking kernel.Authorize with the same call
// and state; the registry now reports the call as confirmed.
func Gate(p Prompter, reg Registry, call kernel.ToolCall, err error) (bool, error) {
	toolErr, ok := err.(*kernel.ToolError)
	if !ok || !kernel.IsNeedsConfirmation(toolErr) {
		return false, fmt.Errorf("confirm: Gate called on a non-NeedsConfirmation error: %v", err)
	}

	approved, perr := p.Confirm(call, "This action requires confirmation before it will run.")
	if perr != nil {
		return false, perr
	}
	if !approved {
		return false, nil
	}

	reg.Confirm(call.ID)
	return true, nil
}
