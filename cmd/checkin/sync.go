package checkin

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/checkin-cli/internal/app"
	"github.com/saadjs/checkin-cli/internal/cloud"
)

const envPassword = "CHECKIN_PASSWORD"

var (
	syncEmail    string
	syncPassword string
	syncSignup   bool
	syncUserID   string
	syncJSON     bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync local data with the remote account",
}

func supabaseStore(cfg app.Config, token string) *cloud.SupabaseStore {
	return &cloud.SupabaseStore{
		BaseURL:     cfg.Sync.SupabaseURL,
		AnonKey:     cfg.Sync.SupabaseAnonKey,
		AccessToken: token,
		HTTPClient:  &http.Client{Timeout: cfg.Sync.Timeout()},
	}
}

// newSyncer builds a syncer for the stored session. Without a session or a
// configured backend it stays in local mode. The returned func releases the
// store connection.
func newSyncer(ctx context.Context, sqldb *sql.DB, env runtimeEnv) (*cloud.Syncer, func(), error) {
	sess, err := cloud.LoadSession(sqldb)
	if err != nil {
		return nil, nil, err
	}
	s := &cloud.Syncer{
		DB:      sqldb,
		Session: sess,
		Log:     env.log.With("component", "sync"),
		Now:     func() time.Time { return env.now },
	}
	release := func() {}
	if !sess.Active() || !env.cfg.Sync.Configured() {
		return s, release, nil
	}
	switch env.cfg.Sync.Backend {
	case app.SyncBackendRedis:
		store, err := cloud.NewRedisStore(ctx, cloud.RedisOptions{
			Addr:     env.cfg.Sync.RedisAddr,
			Password: env.cfg.Sync.RedisPassword,
			DB:       env.cfg.Sync.RedisDB,
		}, env.log)
		if err != nil {
			return nil, nil, err
		}
		s.Store = store
		release = func() { _ = store.Close() }
	default:
		s.Store = supabaseStore(env.cfg, sess.AccessToken)
	}
	return s, release, nil
}

// pushAfterWrite uploads local changes when signed in. Failures are logged
// and left pending for the next push.
func pushAfterWrite(cmd *cobra.Command, sqldb *sql.DB, env runtimeEnv) {
	ctx, cancel := context.WithTimeout(cmd.Context(), env.cfg.Sync.Timeout())
	defer cancel()
	s, release, err := newSyncer(ctx, sqldb, env)
	if err != nil {
		env.log.Warn("sync unavailable", "error", err)
		return
	}
	defer release()
	if err := s.PushIfRemote(ctx); err != nil {
		env.log.Warn("push after write failed", "error", err)
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: changes saved locally but not synced; run `checkin sync push`")
	}
}

var syncLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the remote account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnvDB(func(sqldb *sql.DB, env runtimeEnv) error {
			if !env.cfg.Sync.Configured() {
				return fmt.Errorf("sync backend %q is not configured; see `checkin config set`", env.cfg.Sync.Backend)
			}
			var sess cloud.Session
			if env.cfg.Sync.Backend == app.SyncBackendRedis {
				if strings.TrimSpace(syncUserID) == "" {
					return fmt.Errorf("--user is required for the redis backend")
				}
				sess = cloud.Session{UserID: strings.TrimSpace(syncUserID)}
			} else {
				password := syncPassword
				if password == "" {
					password = os.Getenv(envPassword)
				}
				store := supabaseStore(env.cfg, "")
				ctx, cancel := context.WithTimeout(cmd.Context(), env.cfg.Sync.Timeout())
				defer cancel()
				signIn := store.SignIn
				if syncSignup {
					signIn = store.SignUp
				}
				auth, err := signIn(ctx, syncEmail, password)
				if err != nil {
					return err
				}
				if auth.AccessToken == "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Account created for %s; confirm your email, then run `checkin sync login`\n", syncEmail)
					return nil
				}
				sess = cloud.Session{UserID: auth.UserID, AccessToken: auth.AccessToken}
			}
			if err := cloud.SaveSession(sqldb, sess); err != nil {
				return err
			}
			env.log.Info("signed in", "user_id", sess.UserID, "backend", env.cfg.Sync.Backend)
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", sess.UserID, env.cfg.Sync.Backend)
			fmt.Fprintln(cmd.OutOrStdout(), "Run `checkin sync pull` to load remote data")
			return nil
		})
	},
}

var syncLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out; local data is kept",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := cloud.ClearSession(sqldb); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		})
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync mode and timestamps",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnvDB(func(sqldb *sql.DB, env runtimeEnv) error {
			sess, err := cloud.LoadSession(sqldb)
			if err != nil {
				return err
			}
			// Status needs no connection, so a placeholder store is enough to
			// report the mode the session would sync in.
			s := &cloud.Syncer{DB: sqldb, Session: sess}
			if env.cfg.Sync.Configured() {
				s.Store = supabaseStore(env.cfg, sess.AccessToken)
			}
			st, err := s.Status()
			if err != nil {
				return err
			}
			if syncJSON {
				return printJSON(cmd, st, "sync status")
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Mode: %s\n", st.Mode)
			fmt.Fprintf(out, "Backend: %s\n", env.cfg.Sync.Backend)
			if st.UserID != "" {
				fmt.Fprintf(out, "User: %s\n", st.UserID)
			}
			fmt.Fprintf(out, "Last pull: %s\n", formatSyncTime(st.LastPullAt))
			fmt.Fprintf(out, "Last push: %s\n", formatSyncTime(st.LastPushAt))
			fmt.Fprintf(out, "Local changes: %s\n", formatSyncTime(st.DataUpdatedAt))
			if st.Pending {
				fmt.Fprintln(out, "Pending: yes")
			} else {
				fmt.Fprintln(out, "Pending: no")
			}
			return nil
		})
	},
}

func formatSyncTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(time.RFC3339)
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload local data, overwriting the remote copy",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnvDB(func(sqldb *sql.DB, env runtimeEnv) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), env.cfg.Sync.Timeout())
			defer cancel()
			s, release, err := newSyncer(ctx, sqldb, env)
			if err != nil {
				return err
			}
			defer release()
			if err := s.Push(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Pushed local data")
			return nil
		})
	},
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Replace local data with the remote copy",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnvDB(func(sqldb *sql.DB, env runtimeEnv) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), env.cfg.Sync.Timeout())
			defer cancel()
			s, release, err := newSyncer(ctx, sqldb, env)
			if err != nil {
				return err
			}
			defer release()
			res, err := s.Pull(ctx)
			if err != nil {
				return err
			}
			if res.Seeded {
				fmt.Fprintln(cmd.OutOrStdout(), "Remote was empty; uploaded local data")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pulled remote data: events=%d skipped=%d\n", res.Report.Inserted, res.Report.Skipped)
			for _, w := range res.Report.Warnings {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", w)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.AddCommand(syncLoginCmd, syncLogoutCmd, syncStatusCmd, syncPushCmd, syncPullCmd)

	syncLoginCmd.Flags().StringVar(&syncEmail, "email", "", "Account email (supabase)")
	syncLoginCmd.Flags().StringVar(&syncPassword, "password", "", "Account password (supabase; default $"+envPassword+")")
	syncLoginCmd.Flags().BoolVar(&syncSignup, "signup", false, "Create the account first (supabase)")
	syncLoginCmd.Flags().StringVar(&syncUserID, "user", "", "Account id (redis)")
	syncStatusCmd.Flags().BoolVar(&syncJSON, "json", false, "Output as JSON")
}
