package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/h-lu/gitea-autograde/internal/db"
	"github.com/h-lu/gitea-autograde/internal/roster"
)

func newCollectCommand(opts *rootOptions) *cobra.Command {
	var (
		outputPath string
		saveDB     bool
	)
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Reconcile grade records into a roster CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			store, err := recordStore(cfg)
			if err != nil {
				return err
			}

			rec := &roster.Reconciler{
				Store:  store,
				Prefix: cfg.StudentPrefix,
				Policy: roster.PolicyFromString(cfg.MergePolicy),
			}
			rows, err := rec.Collect(cmd.Context())
			if err != nil {
				return err
			}

			f, err := os.Create(outputPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", outputPath, err)
			}
			defer f.Close()
			if err := roster.WriteCSV(f, rows); err != nil {
				return err
			}

			graded := 0
			for _, r := range rows {
				if r.Status == "graded" {
					graded++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "collected %d students (%d graded) into %s\n",
				len(rows), graded, outputPath)

			if saveDB {
				dbh, err := db.Open(cmd.Context(), db.Driver(cfg.DBDriver), cfg.DBDSN)
				if err != nil {
					return fmt.Errorf("db open: %w", err)
				}
				defer dbh.Close()
				sqlStore := roster.NewSQLStore(dbh, cfg.DBDriver)
				if err := sqlStore.Save(cmd.Context(), cfg.Assignment, rows, time.Now()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "roster saved to database")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outputPath, "output", "grades.csv", "roster CSV output")
	cmd.Flags().BoolVar(&saveDB, "save-db", false, "also persist the roster to the database")
	return cmd
}
