package main

import (
	"os"

	"orbtest/cmd/orbtest/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
