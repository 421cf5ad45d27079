// Package main provides the entry point for the rangelist CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/manan/range-list/cmd/rangelist/commands"
)

func main() {
	rootCmd := commands.NewRootCommand()

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
