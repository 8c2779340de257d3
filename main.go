// ABOUTME: Entry point for the iris CLI
// ABOUTME: Terminal client for patients of the Íris ophthalmology clinic

package main

import (
	"fmt"
	"os"

	"github.com/markalston/iris/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
