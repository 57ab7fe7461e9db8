package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fekuna/omnipos-variation-service/internal/model"
	prodRepoPkg "github.com/fekuna/omnipos-variation-service/internal/product/repository"
	"github.com/fekuna/omnipos-variation-service/internal/variation"
	varRepoPkg "github.com/fekuna/omnipos-variation-service/internal/variation/repository"
	"github.com/spf13/cobra"
)

var productID int64

var combinationsCmd = &cobra.Command{
	Use:   "combinations",
	Short: "List every option combination of a product",
	Long: `Print the cartesian product of a product's variation types, in the order
the admin grid shows them.

Examples:
  variationctl combinations --product 42
  variationctl combinations --product 42 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		p, err := prodRepoPkg.NewPGRepository(db).FindByID(cmd.Context(), productID)
		if err != nil {
			return err
		}
		if err := variation.ValidateTypes(p.VariationTypes); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}

		var sets []model.OptionIDs
		for c := range variation.Combinations(p.VariationTypes) {
			sets = append(sets, c.Set())
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"product_id":   p.ID,
				"count":        variation.CombinationCount(p.VariationTypes),
				"combinations": sets,
			})
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d combinations\n", p.Name, variation.CombinationCount(p.VariationTypes))
		for _, s := range sets {
			fmt.Fprintln(cmd.OutOrStdout(), s)
		}
		return nil
	},
}

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Show the reconciled price/stock grid of a product",
	Long: `Reconcile the product's combinations with its saved variation rows and
print one line per combination. Saved rows that no longer match a combination
are listed as orphans; the next grid save deletes them.

Examples:
  variationctl grid --product 42`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		p, err := prodRepoPkg.NewPGRepository(db).FindByID(cmd.Context(), productID)
		if err != nil {
			return err
		}
		rows, err := varRepoPkg.NewPGRepository(db).FindByProduct(cmd.Context(), productID)
		if err != nil {
			return err
		}

		grid := variation.Reconcile(p.VariationTypes, rows)
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), grid)
		}
		printGrid(cmd.OutOrStdout(), grid)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(combinationsCmd, gridCmd)
	for _, c := range []*cobra.Command{combinationsCmd, gridCmd} {
		c.Flags().Int64Var(&productID, "product", 0, "Product id")
		_ = c.MarkFlagRequired("product")
	}
}

func printGrid(out io.Writer, grid *variation.Grid) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COMBINATION\tOPTIONS\tID\tPRICE\tQUANTITY")
	for _, r := range grid.Rows {
		id, price, qty := "-", "-", "unbounded"
		if r.VariationID != nil {
			id = fmt.Sprint(*r.VariationID)
		}
		if r.Price.Valid {
			price = r.Price.Decimal.StringFixed(2)
		}
		if r.Quantity != nil {
			qty = fmt.Sprint(*r.Quantity)
		} else if !r.Persisted() {
			qty = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", strings.Join(r.Labels, " / "), r.OptionIDs, id, price, qty)
	}
	w.Flush()

	if len(grid.Orphans) > 0 {
		fmt.Fprintf(out, "\n%d orphaned rows:\n", len(grid.Orphans))
		for _, o := range grid.Orphans {
			fmt.Fprintf(out, "  id=%d option_ids=%s\n", o.ID, o.RawOptionIDs)
		}
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
