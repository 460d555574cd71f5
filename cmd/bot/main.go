package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/Spok95/preentrada-bot/internal/bot"
	"github.com/Spok95/preentrada-bot/internal/config"
	"github.com/Spok95/preentrada-bot/internal/dialog"
	"github.com/Spok95/preentrada-bot/internal/infra/db"
	httpx "github.com/Spok95/preentrada-bot/internal/infra/http"
	"github.com/Spok95/preentrada-bot/internal/infra/logger"
	"github.com/Spok95/preentrada-bot/internal/receiving"
	"github.com/Spok95/preentrada-bot/migrations"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

func runMigrations(dsn string, log *slog.Logger) error {
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	log.Debug("applying migrations")
	return migrations.Up(sqlDB)
}

func main() {
	cfg, err := config.Load("config/example.yaml")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)
	log.Info("preentrada service", "base_url", cfg.PreEntrada.BaseURL, "timeout", cfg.PreEntrada.Timeout)

	if err := runMigrations(cfg.Postgres.DSN, log); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	client := receiving.NewClient(cfg.PreEntrada.BaseURL, cfg.PreEntrada.Timeout, log.With("component", "preentrada_client"))
	syncer := receiving.NewSyncer(client, log.With("component", "syncer"))

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, syncer)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	// первичная загрузка обеих коллекций идёт параллельно со стартом бота
	go syncer.Start(ctx)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Error("telegram init failed", "err", err)
		return
	}
	log.Info("telegram authorized", "username", api.Self.UserName)

	b := bot.New(api, log.With("component", "bot"), dialog.NewRepo(pool), syncer, cfg.Telegram.AdminChatID, cfg.Location())
	if err := b.Run(ctx, cfg.Telegram.PollTimeout); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("bot stopped", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
