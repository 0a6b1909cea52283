// Package main provides the statengine command: it runs the interactive game
// loop and validates content and manages snapshots.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
