// Package main implements the guestbook daemon (guestbookd).
package main

import (
	"os"

	"github.com/concave-dev/guestbook/cmd/guestbookd/commands"
)

func init() {
	commands.SetupCommands()
}

// Main entry point
func main() {
	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
