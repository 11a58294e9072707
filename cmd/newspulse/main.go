package main

import (
	"fmt"
	"os"

	"NewsPulse/internal/cli"
)

var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "newspulse: %v\n", err)
		os.Exit(1)
	}
}
