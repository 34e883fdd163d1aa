// Package main is the entry point for the documentation-harvester CLI.
package main

import (
	"os"

	"github.com/rohinmanvi/documentation-harvester/cmd/harvester/commands"
)

func main() {
	os.Exit(commands.Execute())
}
