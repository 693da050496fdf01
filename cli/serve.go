package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dbis-ilm/streamvizzard-provinspector/api"
	"github.com/dbis-ilm/streamvizzard-provinspector/common"
)

// serveCmd exposes event ingestion and the query surface over HTTP until
// interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve event ingestion and the Cypher query surface over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		inspector, err := newInspector(ctx, cfg)
		if err != nil {
			return err
		}
		defer inspector.Shutdown(context.Background())

		server := api.NewServer(inspector)

		errs := make(chan error, 1)
		go func() {
			if err := server.Start(cfg.HTTPAddress); err != nil && err != http.ErrServerClosed {
				errs <- err
			}
		}()

		common.Logger.WithField("address", cfg.HTTPAddress).Info("serving provenance API")

		select {
		case err := <-errs:
			return err
		case <-ctx.Done():
			return nil
		}
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
