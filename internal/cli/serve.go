package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	api "github.com/h-lu/gitea-autograde/internal/api/http"
	"github.com/h-lu/gitea-autograde/internal/auth"
	"github.com/h-lu/gitea-autograde/internal/db"
	"github.com/h-lu/gitea-autograde/internal/grading"
	"github.com/h-lu/gitea-autograde/internal/llm"
	"github.com/h-lu/gitea-autograde/internal/roster"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the grading and roster HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if cfg.AuthSecret == "" {
				return fmt.Errorf("AUTH_SECRET is not set")
			}
			if cfg.AdminPassHash == "" {
				return fmt.Errorf("ADMIN_PASS_HASH is not set")
			}

			store, err := recordStore(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
			if err != nil {
				return fmt.Errorf("db open: %w", err)
			}
			defer dbh.Close()

			var oracle grading.Oracle
			if cfg.LLMAPIKey != "" {
				oracle = llm.New(cfg.LLMAPIURL, cfg.LLMAPIKey, cfg.LLMModel)
			}

			r := api.NewRouter(cfg, api.Deps{
				Auth:    auth.NewAuthService(cfg.AuthSecret),
				Records: store,
				Oracle:  oracle,
				Roster:  roster.NewSQLStore(dbh, cfg.DBDriver),
			})

			log.Printf("listening on %s (assignment=%s, db=%s)", cfg.HTTPAddr, cfg.Assignment, cfg.DBDriver)
			return http.ListenAndServe(cfg.HTTPAddr, r)
		},
	}
	return cmd
}
