package main

import (
	"fmt"
	"os"

	"mcs-risk/cmd/mcs-risk/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
