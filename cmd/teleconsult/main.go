package main

import (
	"os"

	"github.com/arogya/teleconsult/cmd/teleconsult/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
