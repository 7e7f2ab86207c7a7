package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skinlens/backend/internal/domain"
)

func newCatalogCmd() *cobra.Command {
	var (
		filters domain.RecommendFilters
		sortKey string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List catalog products",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newOfflineService()
			if err != nil {
				return err
			}

			products, err := svc.Browse(filters, domain.SortKey(sortKey))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, products)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tBRAND\tCATEGORY\tPRICE\tRATING\tFOR")
			for _, p := range products {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.1f\t%s\n",
					p.ID, p.Name, p.Brand, p.Category, p.Price, p.Rating, strings.Join(p.ForConcerns, ","))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&filters.Category, "category", "c", "", "Only list one category")
	cmd.Flags().StringVarP(&filters.Query, "query", "q", "", "Free-text filter")
	cmd.Flags().StringVar(&sortKey, "sort", "", "rating, name, price_low or price_high")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}
