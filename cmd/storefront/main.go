package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/minimart/storefront-sync/internal/api"
	"github.com/minimart/storefront-sync/internal/core/service"
	"github.com/minimart/storefront-sync/internal/infrastructure/authority"
	"github.com/minimart/storefront-sync/internal/infrastructure/config"
	redisdb "github.com/minimart/storefront-sync/internal/infrastructure/db/redis"
	"github.com/minimart/storefront-sync/internal/infrastructure/host"
	"github.com/minimart/storefront-sync/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.Development()})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis is optional: without it the placement guard is simply disabled.
	var (
		rdb   *goredis.Client
		guard service.PlacementGuard
	)
	if cfg.Redis.Addr != "" {
		client, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, placement guard disabled")
		} else {
			rdb = client
			guard = redisdb.NewPlacementGuard(client)
		}
	}

	gateway := authority.NewClient(cfg.Authority.BaseURL, cfg.Authority.Timeout, log)
	store := service.NewStoreService(gateway, guard, log)
	boot := service.NewBootstrapper(store, cfg.Host.AdminUsername, cfg.Development(), log)

	ident, err := host.FromToken(cfg.Host.Token, cfg.Host.TokenSecret)
	if err != nil && !errors.Is(err, host.ErrNoToken) {
		log.Warn().Err(err).Msg("host identity token rejected")
	}
	result := boot.Run(ctx, ident)
	log.Info().
		Str("identity", string(result.Kind)).
		Int64("user_id", result.User.ID).
		Msg("startup sequence finished")

	e := api.NewRouter(store, boot, rdb, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
