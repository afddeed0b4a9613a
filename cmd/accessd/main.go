package main

import (
	"os"

	"github.com/stackmill/accessd/cmd/accessd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
