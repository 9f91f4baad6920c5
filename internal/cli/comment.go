package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/h-lu/gitea-autograde/internal/comment"
	"github.com/h-lu/gitea-autograde/internal/gitea"
	"github.com/h-lu/gitea-autograde/internal/metadata"
)

func newCommentCommand(opts *rootOptions) *cobra.Command {
	var (
		summaryPath  string
		metadataPath string
		repo         string
		prIndex      int64
		commitSHA    string
		commentType  string
	)
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Post a grading summary comment on the student PR",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if !cfg.PostComments {
				fmt.Fprintln(cmd.OutOrStdout(), "comments disabled, skipping")
				return nil
			}
			if cfg.GiteaToken == "" {
				return fmt.Errorf("GITEA_TOKEN is not set")
			}

			summary, err := os.ReadFile(summaryPath)
			if err != nil {
				return fmt.Errorf("summary: %w", err)
			}
			var rec *metadata.Record
			if metadataPath != "" {
				var r metadata.Record
				if err := readJSON(metadataPath, &r); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: metadata: %v\n", err)
				} else {
					rec = &r
				}
			}

			body, err := comment.Build(strings.TrimSpace(string(summary)), commitSHA, commentType, rec, time.Now())
			if err != nil {
				return err
			}

			owner, name, ok := strings.Cut(repo, "/")
			if !ok {
				return fmt.Errorf("invalid repo %q, want owner/repo", repo)
			}
			cc := &gitea.CommentsClient{
				Client: gitea.New(cfg.GiteaURL, cfg.GiteaToken),
				Owner:  owner,
				Repo:   name,
				Index:  prIndex,
			}
			if err := cc.Publish(cmd.Context(), body); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "comment posted to %s#%d\n", repo, prIndex)
			return nil
		},
	}
	cmd.Flags().StringVar(&summaryPath, "summary", "summary.md", "markdown summary file")
	cmd.Flags().StringVar(&metadataPath, "metadata", "", "record to embed as JSON (optional)")
	cmd.Flags().StringVar(&repo, "repo", "", "student repository (owner/repo)")
	cmd.Flags().Int64Var(&prIndex, "pr", 0, "pull request index")
	cmd.Flags().StringVar(&commitSHA, "commit-sha", "", "graded commit")
	cmd.Flags().StringVar(&commentType, "type", comment.TypeGrade, "comment type: grade|llm|combined")
	_ = cmd.MarkFlagRequired("repo")
	_ = cmd.MarkFlagRequired("pr")
	return cmd
}
