// Package main is the guildcache command: the local social cache server and
// its maintenance commands.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"guildcache/internal/config"
	"guildcache/internal/observability"
	"guildcache/internal/security"
	"guildcache/internal/store"
	"guildcache/internal/store/postgres"
	"guildcache/internal/store/sqlite"
)

// Version information (set at build time)
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "guildcache",
		Short:         "Local cache of chat, groups and memberships with live queries",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCmd(), newMigrateCmd(), newTokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app holds what every command needs after startup.
type app struct {
	cfg *config.Config
	log *zap.Logger
}

func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := observability.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log}, nil
}

// openDB opens and migrates the configured database.
func (a *app) openDB(ctx context.Context) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch a.cfg.DBDriver {
	case "postgres":
		db, err = postgres.Open(ctx, a.cfg.DatabaseURL)
		if err == nil {
			err = postgres.Migrate(ctx, db)
		}
	default:
		db, err = sqlite.Open(a.cfg.SQLitePath)
		if err == nil {
			err = sqlite.Migrate(ctx, db)
		}
	}
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, err
	}
	return db, nil
}

// newRepo builds the cache repository for the configured driver.
func (a *app) newRepo(db *sql.DB) (*store.SocialRepo, error) {
	opts := []store.Option{store.WithLogger(a.log.Named("store"))}
	if a.cfg.CacheEncryptKey != "" {
		enc, err := security.NewEncryptor([]byte(a.cfg.CacheEncryptKey))
		if err != nil {
			return nil, fmt.Errorf("init encryptor: %w", err)
		}
		opts = append(opts, store.WithCipher(enc))
	}
	if a.cfg.DBDriver == "postgres" {
		return postgres.New(db, opts...), nil
	}
	return sqlite.New(db, opts...), nil
}

func (a *app) tokens() *security.TokenService {
	return security.NewTokenService(a.cfg.JWTSecret, time.Duration(a.cfg.AccessTokenMinutes)*time.Minute, a.cfg.AppName)
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the cache schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.log.Sync()

			db, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			a.log.Info("schema migrated", zap.String("driver", a.cfg.DBDriver))
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token [user-id]",
		Short: "Mint a bearer token for a local client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			tokens := a.tokens()

			var tok string
			if ttl > 0 {
				tok, err = tokens.IssueWithTTL(args[0], ttl)
			} else {
				tok, err = tokens.Issue(args[0])
			}
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to ACCESS_TOKEN_EXPIRE_MINUTES)")
	return cmd
}
