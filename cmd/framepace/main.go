// Package main is the entry point for the framepace application.
package main

import (
	"os"

	"github.com/jmylchreest/framepace/cmd/framepace/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
