package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/h-lu/gitea-autograde/internal/grading"
	"github.com/h-lu/gitea-autograde/internal/metadata"
)

func newObjectiveCommand(opts *rootOptions) *cobra.Command {
	var (
		studentPath  string
		standardPath string
		textsPath    string
		repo         string
		outputPath   string
		metadataPath string
	)
	cmd := &cobra.Command{
		Use:   "objective",
		Short: "Grade an objective answer sheet against the standard answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := opts.load(); err != nil {
				return err
			}

			var student, standard map[string]any
			if err := readJSON(studentPath, &student); err != nil {
				// A missing sheet still grades: every question scores 0.
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: student answers: %v\n", err)
				student = map[string]any{}
			}
			if err := readJSON(standardPath, &standard); err != nil {
				return fmt.Errorf("standard answers: %w", err)
			}
			texts := map[string]string{}
			if textsPath != "" {
				if err := readJSON(textsPath, &texts); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: question texts: %v\n", err)
				}
			}

			result := grading.GradeObjective(student, standard, texts, time.Now())
			if err := writeJSON(outputPath, result); err != nil {
				return err
			}
			if metadataPath != "" {
				md := metadata.NewNormalizer().FromObjective(repo, result)
				if err := writeJSON(metadataPath, md); err != nil {
					return err
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), result.Summary())
			return nil
		},
	}
	cmd.Flags().StringVar(&studentPath, "student", "answers.json", "student answer sheet")
	cmd.Flags().StringVar(&standardPath, "standard", "standard_answers.json", "standard answers")
	cmd.Flags().StringVar(&textsPath, "texts", "", "question texts (optional)")
	cmd.Flags().StringVar(&repo, "repo", "", "student repository (owner/repo)")
	cmd.Flags().StringVar(&outputPath, "output", "objective_grade.json", "result output")
	cmd.Flags().StringVar(&metadataPath, "metadata-output", "", "normalized metadata output (optional)")
	return cmd
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
