package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jholhewres/policyguard/internal/confirm"
	"github.com/jholhewres/policyguard/pkg/kernel"
)

// newReplCmd creates the `policyguardd repl` interactive command loop for
// exercising the kernel by hand: enter a tool name and a JSON parameter
// object, see the decision, and approve confirmations inline.
func newReplCmd() *cobra.Command {
	var scopeFlag, roleFlag string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactively issue tool calls against the authorization kernel",
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

			state := newState(cfg, scope, role)
			prompter := confirm.NewTerminalPrompter()

			rl, err := readline.New(fmt.Sprintf("policyguard(%s)> ", scope))
			if err != nil {
				return fmt.Errorf("repl: initializing readline: %w", err)
			}
			defer rl.Close()

			fmt.Println("Enter: <tool_name> [json params]. Ctrl-D to exit.")
			for {
				line, err := rl.Readline()
				if err == io.EOF || err == readline.ErrInterrupt {
					return nil
				}
				if err != nil {
					return err
				}
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}

				call, perr := parseReplLine(line)
				if perr != nil {
					fmt.Println("error:", perr)
					continue
				}

				runReplCall(call, state, prompter)
			}
		},
	}

	cmd.Flags().StringVar(&scopeFlag, "scope", "local_ai", "tool scope: local_ai, cloud_ai, or user_direct")
	cmd.Flags().StringVar(&roleFlag, "role", "standard", "user role: standard or admin")

	return cmd
}

func parseReplLine(line string) (kernel.ToolCall, error) {
	toolName, rest, _ := strings.Cut(line, " ")
	params := kernel.Params{}
	rest = strings.TrimSpace(rest)
	if rest != "" {
		var raw map[string]any
		if err := json.Unmarshal([]byte(rest), &raw); err != nil {
			return kernel.ToolCall{}, fmt.Errorf("parsing params json: %w", err)
		}
		params = kernel.Params(raw)
	}
	return kernel.ToolCall{
		ID:         uuid.New().String(),
		ToolName:   toolName,
		Parameters: params,
	}, nil
}

func runReplCall(call kernel.ToolCall, state *kernel.StaticState, prompter confirm.Prompter) {
	err := kernel.Authorize(call, state)

	if kernel.IsNeedsConfirmation(err) {
		approved, cerr := confirm.Gate(prompter, state.Confirmations(), call, err)
		if cerr != nil {
			fmt.Println("error:", cerr)
			return
		}
		if !approved {
			fmt.Println("DENY   ", call.ToolName, ": operator declined")
			return
		}
		err = kernel.Authorize(call, state)
	}

	printDecision(call, err)
}
