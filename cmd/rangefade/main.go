package main

import (
	"os"

	"rangefade/cmd/rangefade/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
