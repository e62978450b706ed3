package main

import (
	"os"

	"github.com/wonny/sepa/cmd/sepa/commands"
)

// main is the entry point for the SEPA CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/sepa [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
