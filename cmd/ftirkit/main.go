// FTIRKit - FTIR spectrum processing tool
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/FTIRKit/cmd/ftirkit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
