package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hpkotak/lexbud/internal/server"
)

var addrFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the legal tasks over HTTP",
	Long: `Serve the legal tasks over HTTP. Responses stream as newline-delimited JSON.

Endpoints:
  GET  /health
  GET  /api/models
  POST /api/tasks/{summarize,draft,research}
  POST /api/chat`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	if addrFlag != "" {
		cfg.Server.Addr = addrFlag
	}

	srv, err := server.New(cfg, newDispatcher(cfg))
	if err != nil {
		return err
	}
	return srv.Run(commandContext(cmd))
}
