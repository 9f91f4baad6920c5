// Package cli assembles the autograde command tree. Each grading stage
// is its own subcommand so CI workflows can call exactly the stage they
// need.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/h-lu/gitea-autograde/internal/config"
)

type rootOptions struct {
	configPath string
}

// NewRootCommand builds the autograde CLI.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "autograde",
		Short: "Grade student submissions and reconcile results",
		Long: `autograde runs the stages of an assignment grading pipeline:
scoring JUnit test results with a late policy, grading objective
answer sheets, scoring short answers through an LLM, uploading grade
records to a Gitea metadata repository, and reconciling those records
into a class roster.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "course config YAML (overrides environment)")

	cmd.AddCommand(
		newGradeCommand(opts),
		newObjectiveCommand(opts),
		newLLMCommand(opts),
		newUploadCommand(opts),
		newCommentCommand(opts),
		newCollectCommand(opts),
		newServeCommand(opts),
	)
	return cmd
}

func (o *rootOptions) load() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}
