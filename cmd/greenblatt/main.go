package main

import (
	"os"

	"github.com/wonny/greenblatt/cmd/greenblatt/commands"
)

// main is the entry point for the greenblatt CLI
// ⭐ unified CLI entry point: go run ./cmd/greenblatt [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
