// Command marketsim runs the market-town consumer simulation.
package main

import (
	"fmt"
	"os"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
