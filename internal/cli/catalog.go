package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/profile"
)

var (
	catalogGender string
	catalogJSON   bool
)

func init() {
	catalogCmd.Flags().StringVar(&catalogGender, "gender", "", "Show the assortment for a shopper gender (male, female, non-binary)")
	catalogCmd.Flags().BoolVar(&catalogJSON, "json", false, "Print products as JSON")
	rootCmd.AddCommand(catalogCmd)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the kiosk product catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		products := catalog.Default().All()
		if catalogGender != "" {
			g, err := profile.ParseGender(catalogGender)
			if err != nil {
				return err
			}
			products = catalog.ProductsForGender(profile.Profile{Gender: g}.CatalogGender())
		}

		if catalogJSON {
			out, err := json.MarshalIndent(products, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling catalog: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tCOLOR\tGENDER\tPRICE")
		for _, p := range products {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t₹%d\n", p.ID, p.Name, p.Type, p.Color, p.Gender, p.Price)
		}
		return w.Flush()
	},
}
