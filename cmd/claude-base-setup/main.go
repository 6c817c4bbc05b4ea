// Package main is the entry point for the claude-base-setup CLI.
package main

import (
	"os"

	"github.com/thoreinstein/claude-base-setup/cmd/claude-base-setup/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(commands.ReportError(os.Stderr, err))
	}
}
