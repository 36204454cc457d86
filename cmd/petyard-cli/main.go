// Package main provides the entry point for petyard-cli, the offline
// administration tool for a PetYard data store.
package main

import (
	"fmt"
	"os"

	"github.com/yndnr/petyard-go/internal/cli/command"
)

func main() {
	if err := command.App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
