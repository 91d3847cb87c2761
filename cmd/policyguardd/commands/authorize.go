package commands

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jholhewres/policyguard/pkg/kernel"
)

// newAuthorizeCmd creates the `policyguardd authorize` one-shot check
// command, useful for scripting and for manual testing of the policy
// tables without standing up a daemon.
func newAuthorizeCmd() *cobra.Command {
	var scopeFlag, roleFlag, toolFlag string
	var paramFlags []string
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "authorize",
		Short: "Check a single tool call against the authorization kernel",
		Long: `Evaluate one tool call against PolicyGuard and print the decision.

Examples:
  policyguardd authorize --scope local_ai --tool read_file --param path=/home/user/doc.txt
  policyguardd authorize --scope local_ai --tool delete_file --param path=/home/user/doc.txt --confirmed`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _ := resolveConfig(cmd)

			scope, err := parseScope(scopeFlag)
			if err != nil {
				return err
			}
			role, err := parseRole(roleFlag)
			if err != nil {
				return err
			}
			if toolFlag == "" {
				return fmt.Errorf("--tool is required")
			}

			params := kernel.Params{}
			for _, kv := range paramFlags {
				k, v, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("malformed --param %q, want key=value", kv)
				}
				params[k] = v
			}

			call := kernel.ToolCall{
				ID:         uuid.New().String(),
				ToolName:   toolFlag,
				Parameters: params,
			}

			state := newState(cfg, scope, role)
			if confirmed {
				state.Confirmations().Confirm(call.ID)
			}

			err = kernel.Authorize(call, state)
			printDecision(call, err)
			return nil
		},
	}

	cmd.Flags().StringVar(&scopeFlag, "scope", "local_ai", "tool scope: local_ai, cloud_ai, or user_direct")
	cmd.Flags().StringVar(&roleFlag, "role", "standard", "user role: standard or admin")
	cmd.Flags().StringVar(&toolFlag, "tool", "", "tool name to authorize")
	cmd.Flags().StringArrayVar(&paramFlags, "param", nil, "tool parameter as key=value, repeatable")
	cmd.Flags().BoolVar(&confirmed, "confirmed", false, "pretend this call's ID is already confirmed")

	return cmd
}

func printDecision(call kernel.ToolCall, err error) {
	if err == nil {
		fmt.Printf("ALLOW   %s\n", call.ToolName)
		return
	}
	toolErr, ok := err.(*kernel.ToolError)
	if !ok {
		fmt.Printf("ERROR   %s: %v\n", call.ToolName, err)
		return
	}
	switch toolErr.Kind {
	case kernel.KindDenied:
		fmt.Printf("DENY    %s: %s\n", call.ToolName, toolErr.Reason)
	case kernel.KindInvalid:
		fmt.Printf("INVALID %s: %s\n", call.ToolName, toolErr.Reason)
	case kernel.KindNeedsConfirmation:
		fmt.Printf("CONFIRM %s: re-run with --confirmed after operator approval\n", call.ToolName)
	}
}
