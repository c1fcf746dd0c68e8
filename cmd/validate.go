package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/satheeshds/schemes/db"
	"github.com/satheeshds/schemes/ingest"
	"github.com/satheeshds/schemes/reference"
)

var validateReference string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check an upload file without storing it",
}

var validateDistributorsCmd = &cobra.Command{
	Use:   "distributors <file>",
	Short: "Validate a distributor file against reference data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := reference.Load(firstNonEmpty(validateReference, cfg.ReferenceFile))
		if err != nil {
			return err
		}
		t, err := readTable(args[0])
		if err != nil {
			return err
		}
		rep, err := ingest.ValidateDistributors(t, ref)
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), rep.TotalCount, rep.ValidCount, rep.InvalidCount, rep.Errors)
		return nil
	},
}

var validateArticlesCmd = &cobra.Command{
	Use:   "articles <file>",
	Short: "Validate an article catalog file against the stored categories",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := readTable(args[0])
		if err != nil {
			return err
		}
		cats, err := storedCategories()
		if err != nil {
			return err
		}
		rep, err := ingest.ValidateArticles(t, cats)
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), rep.TotalCount, rep.ValidCount, rep.InvalidCount, rep.Errors)
		return nil
	},
}

var validateSalesCmd = &cobra.Command{
	Use:   "sales <file>",
	Short: "Validate a billing data file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := readTable(args[0])
		if err != nil {
			return err
		}
		rep, err := ingest.ValidateSales(t, cfg.MaxSalesRecords)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "records: %d\nskipped: %d\ndistributors: %d\nquantity: %s\nnet sales: %s\n",
			len(rep.Records), rep.SkippedCount, rep.DistributorCount, rep.TotalQuantity, rep.TotalNetSales.StringFixed(2))
		for _, w := range rep.Warnings {
			fmt.Fprintln(out, w)
		}
		return nil
	},
}

func readTable(path string) (*ingest.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ingest.ReadFile(path, f)
}

func storedCategories() (map[string]string, error) {
	database, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, err
	}
	defer database.Close()
	if err := db.Migrate(database); err != nil {
		return nil, err
	}

	rows, err := database.Query("SELECT id, name FROM categories")
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}
	defer rows.Close()

	cats := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		cats[id] = name
	}
	return cats, rows.Err()
}

func printReport(w io.Writer, total, valid, invalid int, errs []string) {
	fmt.Fprintf(w, "total: %d\nvalid: %d\ninvalid: %d\n", total, valid, invalid)
	for _, e := range errs {
		fmt.Fprintln(w, e)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	validateDistributorsCmd.Flags().StringVar(&validateReference, "reference", "", "reference data YAML (overrides REFERENCE_FILE)")
	validateCmd.AddCommand(validateDistributorsCmd, validateArticlesCmd, validateSalesCmd)
	rootCmd.AddCommand(validateCmd)
}
