package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"glistix-nix/internal/codegen"
	"glistix-nix/internal/gleamir"
	"glistix-nix/internal/nixdoc"
)

var emitLineWidth int

func init() {
	emitCmd.Flags().IntVar(&emitLineWidth, "line-width", 80, "target line width for wrapped bindings")
}

var emitCmd = &cobra.Command{
	Use:   "emit <file.gleamir.json>",
	Short: "Lower a single module IR document and print the resulting Nix",
	Long: `emit reads one *.gleamir.json document, lowers it with codegen, and writes
the generated Nix source to stdout. It bypasses the driver's cache and
multi-module discovery entirely, useful for inspecting a single module's
output while iterating on the emitter itself.`,
	Args: cobra.ExactArgs(1),
	RunE: runEmit,
}

func runEmit(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	mod, err := gleamir.DecodeModule(raw)
	if err != nil {
		return fmt.Errorf("failed to decode module IR: %w", err)
	}

	src, bag, err := codegen.EmitModule(mod, codegen.Options{
		Writer: nixdoc.Options{LineWidth: emitLineWidth},
	})
	for _, d := range bag.Entries() {
		fmt.Fprintln(cmd.ErrOrStderr(), d.Error())
	}
	if err != nil {
		return fmt.Errorf("emit failed: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), src)
	return nil
}
