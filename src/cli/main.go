package main

import (
	"os"

	"github.com/pindown-dev/pindown/src/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
