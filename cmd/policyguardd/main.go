// Command policyguardd runs the PolicyGuard authorization daemon: a CLI
// for one-shot tool-call checks, an interactive REPL, a CloudAI Discord
// ingress server, and pairing-secret management.
package main

import (
	"fmt"
	"os"

	"github.com/jholhewres/policyguard/cmd/policyguardd/commands"
)

var version = "dev"

func main() {
	if err := commands.NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
