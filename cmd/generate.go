package cmd

import (
	"fmt"

	"github.com/rpupo63/project-showcase-backend/models"
	"github.com/spf13/cobra"
)

var (
	generateOut        string
	generateReportOnly bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate typed query helpers and the column mismatch report",
	Long: `Migrates the schema, prints columns that no model field maps to and
writes gorm/gen query helpers.

With --report-only, only the column mismatch report is printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		if generateReportOnly {
			mismatches, err := models.GenerateColumnMismatchReport(db.DB(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if mismatches > 0 {
				return fmt.Errorf("%d columns are not mapped to model fields", mismatches)
			}
			return nil
		}
		return models.GenerateModels(db.DB(), generateOut, cmd.OutOrStdout())
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateOut, "out", "./query", "Output directory for generated query helpers")
	generateCmd.Flags().BoolVar(&generateReportOnly, "report-only", false, "Only print the column mismatch report")
}
