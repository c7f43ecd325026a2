// Package main provides the entry point for the indexify CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/indexify/cmd/indexify/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
