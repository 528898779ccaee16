// Package main is the entry point for the Kingdom Hub points economy.
package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"kingdom-hub/internal/bot"
	"kingdom-hub/internal/config"
	"kingdom-hub/internal/game"
	"kingdom-hub/internal/game/coinflip"
	"kingdom-hub/internal/game/luckydraw"
	"kingdom-hub/internal/game/miner"
	"kingdom-hub/internal/game/spin"
	"kingdom-hub/internal/http"
	"kingdom-hub/internal/http/handlers"
	"kingdom-hub/internal/jobs"
	"kingdom-hub/internal/model"
	"kingdom-hub/internal/pkg/db"
	"kingdom-hub/internal/pkg/lock"
	"kingdom-hub/internal/repository"
	"kingdom-hub/internal/service"
	"kingdom-hub/internal/shop"
	"kingdom-hub/internal/store"
)

var version = "dev"

func main() {
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogger(cfg.Log)
	log.Info().Str("storage", cfg.Storage.Driver).Msg("Configuration loaded successfully")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kv, closeKV, err := openKV(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer closeKV()

	st, err := store.Open(ctx, kv, cfg.Economy.Defaults)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load hub state")
	}

	catalog, err := shop.LoadCatalog(cfg.Shop.CatalogFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load shop catalog")
	}

	// Services
	txlog := service.NewTransactionLog(st)
	configStore := service.NewConfigStore(st)
	ledger := service.NewLedger(st, lock.NewAccountLock(), configStore, txlog)
	gate := service.NewCooldownGate(st, configStore)
	accounts := service.NewAccountService(ledger, st, cfg.Economy.WelcomeBonus, time.Now)
	shopService := service.NewShopService(ledger, txlog, catalog, time.Now)
	admin := service.NewAdminService(ledger, txlog, configStore, st, cfg.Admin.AccountID)
	giveaways := service.NewGiveawayService(ledger, txlog, st)

	if _, err := accounts.EnsureAdmin(ctx, service.AdminSeed{
		ID:           cfg.Admin.AccountID,
		Username:     cfg.Admin.Username,
		Points:       cfg.Admin.SeedBalance,
		ReferralCode: cfg.Admin.ReferralCode,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed administrative account")
	}

	registry, err := game.NewRegistry(spin.New(), coinflip.New(), luckydraw.New(), miner.New())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register games")
	}
	log.Info().Int("game_count", registry.Count()).Interface("games", registry.Kinds()).Msg("Games registered")

	mc := cfg.Games.Miner
	rewards := service.NewRewardService(service.RewardDeps{
		Ledger:   ledger,
		TxLog:    txlog,
		Gate:     gate,
		Config:   configStore,
		Store:    st,
		Catalog:  catalog,
		Registry: registry,
		Energy: miner.NewEnergyMeter(miner.EnergyConfig{
			Max:           mc.MaxEnergy,
			ClickCost:     mc.ClickCost,
			RegenAmount:   mc.RegenAmount,
			RegenInterval: mc.RegenInterval,
		}),
		Rand: game.NewRand(uint64(time.Now().UnixNano())),
		Delays: map[model.ActionKind]time.Duration{
			model.ActionSpin:      cfg.Games.SpinDelay,
			model.ActionCoinFlip:  cfg.Games.CoinFlipDelay,
			model.ActionLuckyDraw: cfg.Games.LuckyDrawDelay,
		},
	})

	// Background jobs
	scheduler := jobs.NewScheduler(st, cfg.Jobs, cfg.Admin.AccountID)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job scheduler")
	}
	defer scheduler.Stop()

	// HTTP
	var srv *nethttp.Server
	if cfg.HTTP.Enabled {
		if cfg.Log.Level != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}
		engine := http.NewEngine(
			handlers.NewHandler(ledger, txlog, configStore, st, cfg.Admin.AccountID),
			handlers.NewHealthHandler(st, version),
		)
		srv = &nethttp.Server{Addr: cfg.HTTP.Addr, Handler: engine, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			log.Info().Str("addr", cfg.HTTP.Addr).Msg("HTTP server listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
				log.Error().Err(err).Msg("HTTP server failed")
				cancel()
			}
		}()
	}

	// Telegram
	telegramBot, err := bot.New(&bot.Dependencies{
		Config:      cfg,
		Accounts:    accounts,
		Rewards:     rewards,
		Shop:        shopService,
		Admin:       admin,
		Giveaways:   giveaways,
		Ledger:      ledger,
		TxLog:       txlog,
		ConfigStore: configStore,
		Registry:    registry,
		Catalog:     catalog,
	})
	switch {
	case errors.Is(err, bot.ErrNoToken):
		log.Warn().Msg("No bot token configured, Telegram front end disabled")
	case err != nil:
		log.Fatal().Err(err).Msg("Failed to create bot")
	default:
		go telegramBot.Start()
	}

	<-ctx.Done()
	log.Info().Msg("Received shutdown signal")

	if telegramBot != nil {
		telegramBot.Stop()
	}
	if srv != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown failed")
		}
	}
	log.Info().Msg("Hub stopped gracefully")
}

func setupLogger(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		zerolog.TimeFieldFormat = time.RFC3339
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// openKV opens the configured storage backend and returns its closer.
func openKV(ctx context.Context, cfg *config.Config) (repository.KV, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, &cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		kv := repository.NewPostgresKV(pool.Pool)
		if err := kv.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return kv, pool.Close, nil

	case config.DriverSQLite:
		kv, err := repository.OpenSQLiteKV(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return kv, closer(kv), nil

	case config.DriverRedis:
		rc := cfg.Storage.Redis
		kv, err := repository.NewRedisKV(ctx, rc.Addr, rc.Password, rc.DB, rc.Prefix)
		if err != nil {
			return nil, nil, err
		}
		return kv, closer(kv), nil
	}

	log.Warn().Msg("Using in-memory storage, state is lost on restart")
	kv := repository.NewMemoryKV()
	return kv, closer(kv), nil
}

func closer(kv repository.KV) func() {
	return func() {
		if err := kv.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close storage")
		}
	}
}
