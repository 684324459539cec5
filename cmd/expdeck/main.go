package main

import (
	"os"

	"github.com/expdeck/expdeck/cmd/expdeck/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
