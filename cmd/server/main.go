// Package main is the entry point for the tasker API. It exposes a small
// command tree: serve runs the HTTP server, migrate manages the schema and
// seed creates the initial owner account.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
