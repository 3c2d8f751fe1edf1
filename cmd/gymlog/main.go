// ABOUTME: Entry point for the gymlog CLI.
// ABOUTME: Invokes the root Cobra command.
package main

import (
	"fmt"
	"os"
)

func main() {
	// cobra prints command errors itself
	err := rootCmd.Execute()
	if cerr := closeApp(); cerr != nil {
		fmt.Fprintln(os.Stderr, "Error:", cerr)
		err = cerr
	}
	if err != nil {
		os.Exit(1)
	}
}
