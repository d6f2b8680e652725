package main

import (
	"os"

	"github.com/spf13/cobra"

	"glistix-nix/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "glistixnix",
	Short: "Glistix Nix backend",
	Long:  `glistixnix lowers already type-checked Gleam module IR into Nix source.`,
}

// main wires the version string into the root command, registers every
// subcommand and persistent flag, and executes the CLI. A non-nil error
// from Execute exits the process with status 1; Execute has already printed
// the error itself.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(emitCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
