package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/fluentz/internal/advisor"
	"github.com/abhisek/fluentz/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the practice catalog over HTTP",
	Long: `Serves the local practice catalog as a JSON API. Other fluentz
instances can use it with catalog.source=http.

  GET  /health
  GET  /api/practices
  GET  /api/practices/difficulty/{difficulty}
  GET  /api/practices/{id}
  POST /api/practices/FindNextPractice`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, st, log, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Server.Addr
		}

		repo := st.PracticeRepo()
		srv := api.New(repo, advisor.NewRuleAdvisor(repo, nil), cfg.Server.AllowedOrigins, log)
		return api.ListenAndServe(cmd.Context(), addr, srv.Handler(), log)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config, :8000)")
}
