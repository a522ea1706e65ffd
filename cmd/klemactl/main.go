// Package main provides the entry point for the klemactl CLI.
package main

import (
	"os"

	"klema-chatbot/cmd/klemactl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
