// Command rendimo analyzes French real-estate listings: it extracts a
// structured record from a listing URL, computes rental yield, compares the
// price against the local market, and answers questions about the result.
package main

import (
	"os"

	"github.com/rendimo/rendimo/cmd/rendimo/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
