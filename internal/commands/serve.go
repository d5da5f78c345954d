package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/api"
)

func newServeCommand(repoDir *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(*repoDir)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = e.cfg.Server.Addr
			}

			app := api.NewApp(api.NewHandler(e.svc, e.log))

			ctx := cmd.Context()
			go func() {
				<-ctx.Done()
				_ = app.Shutdown()
			}()

			e.log.Info().Str("addr", addr).Str("repo", e.root).Msg("serving")
			if err := app.Listen(addr); err != nil {
				return fmt.Errorf("serving on %s: %w", addr, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from tally.yaml)")
	return cmd
}
