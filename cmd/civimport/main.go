// Package main provides the entry point for the civimport CLI tool.
package main

import (
	"github.com/civimap/civimport/internal/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
