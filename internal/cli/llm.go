package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/h-lu/gitea-autograde/internal/grading"
	"github.com/h-lu/gitea-autograde/internal/llm"
	"github.com/h-lu/gitea-autograde/internal/metadata"
)

// questionSet is the on-disk shape of a short-answer grading job:
// question texts and rubrics come from the assignment, answers from the
// student sheet keyed by the same ids.
type questionSet struct {
	Questions []struct {
		ID       string `json:"id"`
		Question string `json:"question"`
		Rubric   string `json:"rubric"`
	} `json:"questions"`
	MaxScorePerQuestion float64 `json:"max_score_per_question,omitempty"`
}

func newLLMCommand(opts *rootOptions) *cobra.Command {
	var (
		questionsPath string
		answersPath   string
		repo          string
		outputPath    string
		metadataPath  string
	)
	cmd := &cobra.Command{
		Use:   "llm",
		Short: "Score short answers through the LLM oracle",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if cfg.LLMAPIKey == "" {
				return fmt.Errorf("LLM_API_KEY is not set")
			}

			var qs questionSet
			if err := readJSON(questionsPath, &qs); err != nil {
				return fmt.Errorf("questions: %w", err)
			}
			answers := map[string]string{}
			if err := readJSON(answersPath, &answers); err != nil {
				// Grade anyway; every answer is empty and flagged.
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: answers: %v\n", err)
			}

			scorer := &grading.RubricScorer{
				Oracle: llm.New(cfg.LLMAPIURL, cfg.LLMAPIKey, cfg.LLMModel),
			}
			judgments := make([]grading.Judgment, 0, len(qs.Questions))
			for _, q := range qs.Questions {
				judgments = append(judgments, scorer.Score(cmd.Context(), q.Question, q.Rubric, answers[q.ID]))
			}
			agg := grading.AggregateEssays(judgments, qs.MaxScorePerQuestion)

			if err := writeJSON(outputPath, agg); err != nil {
				return err
			}
			if metadataPath != "" {
				md := metadata.NewNormalizer().FromEssays(repo, agg)
				if err := writeJSON(metadataPath, md); err != nil {
					return err
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), agg.Summary())
			return nil
		},
	}
	cmd.Flags().StringVar(&questionsPath, "questions", "questions.json", "question and rubric definitions")
	cmd.Flags().StringVar(&answersPath, "answers", "short_answers.json", "student answers keyed by question id")
	cmd.Flags().StringVar(&repo, "repo", "", "student repository (owner/repo)")
	cmd.Flags().StringVar(&outputPath, "output", "llm_grade.json", "aggregate output")
	cmd.Flags().StringVar(&metadataPath, "metadata-output", "", "normalized metadata output (optional)")
	return cmd
}
