// Command retained runs a demo widget tree on the reconciliation engine.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/retained/cmd/retained/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
