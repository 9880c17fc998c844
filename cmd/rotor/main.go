package main

import (
	"os"

	"github.com/wonny/rotor/backend/cmd/rotor/commands"
)

// main is the entry point for the rotor CLI: go run ./cmd/rotor [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
