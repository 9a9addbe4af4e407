package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/billyloki/module-shop-admin/internal/paths"
	"github.com/billyloki/module-shop-admin/internal/sqlite"
	"github.com/billyloki/module-shop-admin/internal/stubapi"
)

const (
	defaultAddr     = "127.0.0.1:8088"
	shutdownTimeout = 5 * time.Second
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr         string
		dataDir      string
		doubleEncode bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local stand-in API over a SQLite store",
		Long: "Serve the category, region and destination price endpoints from a local\n" +
			"data directory. Tables are kept as JSONL files and seeded on first start.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := paths.ResolveDataDir(dataDir, a.cfg.DataDir)
			if err != nil {
				return systemError("resolve data dir: %w", err)
			}
			logger := a.logger.With().Str("component", "stubapi").Logger()

			backend := sqlite.NewBackend(sqlite.WithLogger(a.logger.With().Str("component", "sqlite").Logger()))
			if err := backend.Attach(dir); err != nil {
				return systemError("attach backend: %w", err)
			}
			defer backend.Detach()

			srv := &http.Server{
				Addr:              addr,
				Handler:           stubapi.New(backend, stubapi.WithLogger(logger), stubapi.DoubleEncode(doubleEncode)),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				errc <- srv.ListenAndServe()
			}()
			logger.Info().Str("addr", addr).Str("data_dir", dir).Bool("double_encode", doubleEncode).Msg("serving")
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s%s\n", addr, stubapi.DefaultPrefix)

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return systemError("serve: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return systemError("shutdown: %w", err)
			}
			logger.Info().Msg("stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "data directory (default: data_dir from config, then "+paths.EnvDataDir+")")
	cmd.Flags().BoolVar(&doubleEncode, "quirk-double-encode", false, "answer delete calls with a JSON-encoded string body")
	return cmd
}
