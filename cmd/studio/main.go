package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "studio",
	Short: "Analyze 3D model files and price print jobs",
	Long: `studio is a command-line companion to the quoting service.
It parses STL, OBJ, 3MF and AMF files, reports printability metrics,
and prices jobs against the built-in printer fleet using the same
engine the server runs.`,
	Version: "1.0.0",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
