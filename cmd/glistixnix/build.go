package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"glistix-nix/internal/config"
	"glistix-nix/internal/driver"
)

var buildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Compile every *.gleamir.json module under path to Nix",
	Long: `build discovers every *.gleamir.json document under path (the current
directory if omitted), lowers each one to Nix source, and writes the result
under the configured output root alongside the runtime prelude.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().Bool("quiet", false, "suppress per-module build output")
}

func runBuild(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := driver.Run(ctx, driver.Options{
		Root:   root,
		Config: cfg,
		Quiet:  quiet,
	})
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	failed := 0
	for _, r := range res.Reports {
		if r.Err != nil {
			failed++
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d compiled, %d cached, %d failed (prelude: %s)\n",
		res.Compiled, res.CacheHits, failed, res.PreludeOut)

	if failed > 0 {
		os.Exit(1)
	}
	return nil
}
