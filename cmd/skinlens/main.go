// Package main provides the skinlens command line tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "skinlens",
		Short:        "SkinLens skincare recommendation engine",
		Long:         "SkinLens ranks a skincare catalog against a skin scan, explains each match and serves routines, comparisons and scan history over HTTP.",
		SilenceUsage: true,
	}
	root.AddCommand(
		newServeCmd(),
		newRecommendCmd(),
		newLevelsCmd(),
		newCatalogCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
