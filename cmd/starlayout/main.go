// Command starlayout measures star layout scenarios from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/starlayout/cmd/starlayout/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
