package main

import (
	"os"

	"github.com/planwerk/planwerk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
