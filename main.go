package main

import (
	"os"

	"github.com/homedeck/homedeck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
