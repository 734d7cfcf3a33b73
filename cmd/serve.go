package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/TIMOVIS/mandarin-exam/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service: LLM proxy, student store and metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, envOptions{Console: true, LLM: true})
		if err != nil {
			return err
		}
		defer e.Close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = e.Config.Server.Addr
		}

		srv := server.New(server.Options{
			Provider:  e.Provider,
			Profiles:  e.Deps.Profiles,
			Log:       e.Log,
			RateLimit: e.Config.Server.RateLimit,
			Burst:     e.Config.Server.Burst,
			Mode:      e.Config.Server.Mode,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config, :8080)")
}
