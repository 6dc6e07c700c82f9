package main

import (
	"context"
	"fmt"

	"github.com/easylearn/easylearn-backend/internal/config"
	"github.com/easylearn/easylearn-backend/internal/database"
	"github.com/easylearn/easylearn-backend/internal/logger"
	"github.com/easylearn/easylearn-backend/internal/repository"
	"github.com/easylearn/easylearn-backend/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "eductl",
		Short:         "Operator tool for the EasyLearn backend",
		SilenceUsage:  true,
	}
	cmd.AddCommand(newCreateAdminCmd())
	cmd.AddCommand(newTokensCmd())
	return cmd
}

// app holds the connections a subcommand needs. Redis is only dialed on demand.
type app struct {
	cfg  *config.Config
	log  zerolog.Logger
	pool *pgxpool.Pool
	rdb  *redis.Client
}

func openApp(ctx context.Context, withRedis bool) (*app, error) {
	cfg := config.Load()
	log := logger.Component(logger.Setup(cfg.LogLevel, cfg.LogFormat), "eductl")

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	a := &app{cfg: cfg, log: log, pool: pool}

	if withRedis {
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.rdb = rdb
	}
	return a, nil
}

func (a *app) Close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	a.pool.Close()
}

func (a *app) accessTokens() *service.AccessTokenService {
	return service.NewAccessTokenService(repository.NewAccessTokenRepository(a.pool), a.cfg.AccessTokenTTL, a.log)
}

func (a *app) auth() *service.AuthService {
	return service.NewAuthService(
		a.cfg, a.rdb, database.NewTxManager(a.pool),
		repository.NewUserRepository(a.pool), a.accessTokens(), a.log,
	)
}
