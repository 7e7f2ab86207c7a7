package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skinlens/backend/internal/usecase"
)

func newLevelsCmd() *cobra.Command {
	var (
		scanPath string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "levels",
		Short: "Show normalized severity levels for a scan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			scan, err := loadScanFile(scanPath)
			if err != nil {
				return err
			}

			readings := usecase.BuildSeverityProfile(*scan)
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, readings)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ATTRIBUTE\tRAW\tLEVEL\tVALUE")
			for _, r := range readings {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\n", r.Label, r.Raw, r.Level, r.Value)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&scanPath, "scan", "s", "", "Path to scan JSON file (required)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	if err := cmd.MarkFlagRequired("scan"); err != nil {
		panic(fmt.Sprintf("failed to mark scan flag as required: %v", err))
	}
	return cmd
}
