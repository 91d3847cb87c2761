// Package commands implements policyguardd's CLI subcommands using cobra.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root CLI command with every subcommand
// registered.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "policyguardd",
		Short: "PolicyGuard - tool-call authorization daemon",
		Long: `PolicyGuard is the trust boundary every tool call from the local
model, the cloud model, or the user must cross before a side-effecting
tool runs.

Examples:
  policyguardd authorize --tool read_file --param path=/home/user/doc.txt
  policyguardd serve
  policyguardd repl
  policyguardd pair generate`,
		Version: version,
	}

	rootCmd.AddCommand(
		newAuthorizeCmd(),
		newServeCmd(),
		newReplCmd(),
		newPairCmd(),
	)

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to the policyguard config file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	return rootCmd
}
