package main

import (
	"fmt"
	"os"

	"FinAgent/internal/cli"
)

func main() {
	if err := cli.NewRootCmd(cli.DefaultLoader).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
