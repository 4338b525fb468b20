// ABOUTME: Entry point for the repertoire CLI
// ABOUTME: Executes the root command and maps errors to the exit status

package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
