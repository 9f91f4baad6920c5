package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/h-lu/gitea-autograde/internal/grading"
	"github.com/h-lu/gitea-autograde/internal/junit"
	"github.com/h-lu/gitea-autograde/internal/metadata"
	"github.com/h-lu/gitea-autograde/internal/policy"
)

func newGradeCommand(opts *rootOptions) *cobra.Command {
	var (
		resultsPath  string
		workdir      string
		repo         string
		language     string
		framework    string
		deadline     string
		outputPath   string
		metadataPath string
	)
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Score JUnit test results with the late policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if deadline == "" {
				deadline = cfg.Deadline
			}

			outcome := junit.ParseFile(resultsPath)
			submitted := policy.CommitTime(workdir, time.Now)
			penalty := policy.Penalty(deadline, submitted)
			rec := grading.ScoreProgramming(outcome, penalty, time.Now())

			if err := writeJSON(outputPath, rec); err != nil {
				return err
			}
			if metadataPath != "" {
				md := metadata.NewNormalizer().FromProgramming(metadata.ProgrammingInput{
					Repo:          repo,
					Language:      language,
					TestFramework: framework,
				}, rec)
				if err := writeJSON(metadataPath, md); err != nil {
					return err
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), rec.Summary(deadline, submitted))
			return nil
		},
	}
	cmd.Flags().StringVar(&resultsPath, "results", "test-results.xml", "JUnit XML report")
	cmd.Flags().StringVar(&workdir, "workdir", ".", "submission checkout (for commit time)")
	cmd.Flags().StringVar(&repo, "repo", "", "student repository (owner/repo)")
	cmd.Flags().StringVar(&language, "language", "python", "submission language")
	cmd.Flags().StringVar(&framework, "framework", "pytest", "test framework name")
	cmd.Flags().StringVar(&deadline, "deadline", "", "deadline override (YYYY-MM-DD HH:MM:SS)")
	cmd.Flags().StringVar(&outputPath, "output", "grade.json", "grade record output")
	cmd.Flags().StringVar(&metadataPath, "metadata-output", "", "normalized metadata output (optional)")
	return cmd
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
