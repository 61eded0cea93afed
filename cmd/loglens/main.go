// Package main provides the entry point for the loglens CLI.
package main

import (
	"os"

	"github.com/loglens/loglens/cmd/loglens/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
