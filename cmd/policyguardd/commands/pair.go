package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jholhewres/policyguard/internal/pairing"
)

// newPairCmd creates the `policyguardd pair` command group for managing
// the CloudAI pairing secret.
func newPairCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pair",
		Short: "Manage the CloudAI pairing secret",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "generate",
			Short: "Generate and store a new pairing secret, printing it once",
			RunE: func(*cobra.Command, []string) error {
				secret, err := pairing.Generate()
				if err != nil {
					return err
				}
				if err := pairing.Set(secret); err != nil {
					return err
				}
				fmt.Println("Pairing secret (configure this on the CloudAI side, it will not be shown again):")
				fmt.Println(secret)
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Report whether a pairing secret is configured",
			RunE: func(*cobra.Command, []string) error {
				if pairing.Configured() {
					fmt.Println("pairing secret is configured")
				} else {
					fmt.Println("no pairing secret configured — CloudAI calls will be denied")
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove the pairing secret, denying all future CloudAI calls",
			RunE: func(*cobra.Command, []string) error {
				return pairing.Clear()
			},
		},
	)

	return cmd
}
