// Package main provides the dataexplorer CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/dataexplorer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
