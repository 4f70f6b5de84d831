package main

import (
	"os"

	"github.com/aetheroos/aethero/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
