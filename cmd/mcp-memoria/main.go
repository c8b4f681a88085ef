// Package main provides the entry point for the mcp-memoria CLI.
package main

import (
	"os"

	"github.com/mcp-memoria/mcp-memoria/cmd/mcp-memoria/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
