package checkin

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/checkin-cli/internal/api"
	"github.com/saadjs/checkin-cli/internal/cloud"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local data as a JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnvDB(func(sqldb *sql.DB, env runtimeEnv) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr := serveAddr
			if addr == "" {
				addr = env.cfg.Serve.Addr
			}

			s, release, err := newSyncer(ctx, sqldb, env)
			if err != nil {
				return err
			}
			defer release()
			// The server clock follows the wall clock; --now only pins the
			// syncer's bookkeeping when set.
			if nowFlag == "" {
				s.Now = time.Now
			}

			var onWrite func()
			if s.Mode() == cloud.ModeRemote {
				debouncer := cloud.NewDebouncer(env.cfg.Sync.Debounce(), env.cfg.Sync.Timeout(), s.Push, env.log)
				defer func() {
					flushCtx, cancel := context.WithTimeout(context.Background(), env.cfg.Sync.Timeout())
					defer cancel()
					debouncer.Stop(flushCtx)
				}()
				onWrite = debouncer.Trigger
			}

			srv := api.NewServer(api.Config{
				Addr:    addr,
				OnWrite: onWrite,
				Now: func() time.Time {
					if nowFlag != "" {
						return env.now
					}
					return time.Now()
				},
			}, sqldb, env.log)
			fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s (sync: %s)\n", addr, s.Mode())
			return srv.Run(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, 127.0.0.1:8787)")
}
