package cli

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/h-lu/gitea-autograde/internal/config"
	"github.com/h-lu/gitea-autograde/internal/gitea"
	"github.com/h-lu/gitea-autograde/internal/storage"
)

// recordStore selects the Gitea-backed store when a metadata repo is
// configured and falls back to the local filesystem otherwise.
func recordStore(cfg config.Config) (storage.RecordStore, error) {
	if cfg.MetadataRepo != "" {
		if cfg.GiteaToken == "" {
			return nil, fmt.Errorf("GITEA_TOKEN is not set")
		}
		return gitea.NewContentsStore(gitea.New(cfg.GiteaURL, cfg.GiteaToken), cfg.MetadataRepo, cfg.MetadataBranch)
	}
	return storage.NewFSStore(cfg.RecordsDir)
}

func newUploadCommand(opts *rootOptions) *cobra.Command {
	var (
		recordPath  string
		studentRepo string
		workflow    string
		runID       string
		commitSHA   string
	)
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a grade record to the metadata store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(recordPath)
			if err != nil {
				// A grading stage may legitimately produce no record;
				// don't fail the whole workflow over it.
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: no record to upload: %v\n", err)
				return nil
			}

			store, err := recordStore(cfg)
			if err != nil {
				return err
			}
			if runID == "" {
				runID = uuid.NewString()
			}
			path := storage.RecordPath(studentRepo, workflow, runID, commitSHA)
			msg := fmt.Sprintf("Add %s record for %s (run %s)", workflow, studentRepo, runID)
			if err := store.Put(cmd.Context(), path, data, msg); err != nil {
				return fmt.Errorf("upload: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&recordPath, "record", "metadata.json", "record file to upload")
	cmd.Flags().StringVar(&studentRepo, "student-repo", "", "student repository (owner/repo)")
	cmd.Flags().StringVar(&workflow, "workflow", "grade", "producing workflow: grade|objective|llm")
	cmd.Flags().StringVar(&runID, "run-id", "", "workflow run id (random when empty)")
	cmd.Flags().StringVar(&commitSHA, "commit-sha", "", "graded commit")
	_ = cmd.MarkFlagRequired("student-repo")
	return cmd
}
