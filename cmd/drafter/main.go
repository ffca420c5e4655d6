// drafter interviews you about a project, builds a validated blueprint, and
// generates or refreshes the project's agent-guidance document.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes surfaced to callers.
const (
	exitOK         = 0
	exitViolations = 1
	exitError      = 2
)

// errRejected marks a run that completed but produced a blueprint the
// constraint validator refused. The violation list has already been printed.
var errRejected = errors.New("blueprint rejected")

var rootCmd = &cobra.Command{
	Use:           "drafter",
	Short:         "Adaptive project blueprints and managed guidance docs",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errRejected) {
			os.Exit(exitViolations)
		}
		fmt.Fprintf(os.Stderr, "drafter: %v\n", err)
		os.Exit(exitError)
	}
	os.Exit(exitOK)
}
