// Command ghboard is the terminal entrypoint: it wires config, the SQLite
// cache, the GitHub client, the sync engine, the edit coordinator, and the
// bubbletea UI together, per spec.md §6.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ghboard: %v\n", err)
		os.Exit(1)
	}
}
