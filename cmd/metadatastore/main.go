// Command metadatastore is a demonstration harness over the store
// package: a CLI shell standing in for the RPC transport spec.md places
// out of scope, so the core can be exercised end to end without a server.
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
