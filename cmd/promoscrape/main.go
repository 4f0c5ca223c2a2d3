// Package main is the entry point for the promoscrape CLI.
package main

import (
	"os"

	"github.com/jmylchreest/promoscrape/cmd/promoscrape/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
