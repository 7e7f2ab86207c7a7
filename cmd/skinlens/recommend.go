package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skinlens/backend/internal/domain"
)

func newRecommendCmd() *cobra.Command {
	var (
		scanPath string
		filters  domain.RecommendFilters
		sortKey  string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank the catalog against a scan",
		Long:  "Scores every catalog product against the concerns and avoid tags of a scan JSON file and prints the ranking with match percentages and reasons.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			scan, err := loadScanFile(scanPath)
			if err != nil {
				return err
			}
			svc, err := newOfflineService()
			if err != nil {
				return err
			}

			list, err := svc.Recommend(cmd.Context(), scan, filters, domain.SortKey(sortKey))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, list)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tID\tPRODUCT\tMATCH\tWHY")
			for i, r := range list {
				why := strings.Join(r.Why, "; ")
				if len(r.Warnings) > 0 {
					why += " [" + strings.Join(r.Warnings, "; ") + "]"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s (%s)\t%d%%\t%s\n", i+1, r.Product.ID, r.Product.Name, r.Product.Brand, r.MatchPercent, why)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&scanPath, "scan", "s", "", "Path to scan JSON file (required)")
	cmd.Flags().StringVarP(&filters.Category, "category", "c", "", "Only rank one category")
	cmd.Flags().StringVarP(&filters.Query, "query", "q", "", "Free-text filter on name, brand, category and key ingredients")
	cmd.Flags().IntVarP(&filters.Limit, "limit", "n", 10, "Maximum number of products")
	cmd.Flags().StringVar(&sortKey, "sort", "", "best_match, rating, name, price_low or price_high")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")

	if err := cmd.MarkFlagRequired("scan"); err != nil {
		panic(fmt.Sprintf("failed to mark scan flag as required: %v", err))
	}
	return cmd
}
