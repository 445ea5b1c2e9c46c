// Package main is the entry point for the postmap CLI.
package main

import (
	"os"

	"github.com/jmylchreest/postmap/cmd/postmap/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
