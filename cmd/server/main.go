package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/Spok95/recycle-stock/internal/auth"
	"github.com/Spok95/recycle-stock/internal/config"
	"github.com/Spok95/recycle-stock/internal/domain/inventory"
	"github.com/Spok95/recycle-stock/internal/domain/materials"
	"github.com/Spok95/recycle-stock/internal/domain/users"
	"github.com/Spok95/recycle-stock/internal/infra/db"
	httpx "github.com/Spok95/recycle-stock/internal/infra/http"
	"github.com/Spok95/recycle-stock/internal/infra/logger"
	"github.com/Spok95/recycle-stock/internal/infra/metrics"
	"github.com/Spok95/recycle-stock/internal/infra/notify"
	"github.com/Spok95/recycle-stock/internal/store/memory"
)

type stores struct {
	users     users.Store
	materials materials.Store
	inventory inventory.Store
	close     func()
}

func main() {
	configPath := pflag.StringP("config", "c", "config/example.yaml", "path to the YAML config file")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		panic(err)
	}
	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
	log.Info("graceful shutdown complete")
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	ledgerOpts := []inventory.Option{
		inventory.WithLowStockThreshold(decimal.NewFromFloat(cfg.Stock.LowThreshold)),
		inventory.WithNotifier(newNotifier(cfg, log)),
	}
	deps := httpx.Deps{
		Log:       log,
		Accounts:  users.NewService(st.users, tokens, log),
		Materials: materials.NewService(st.materials, log),
		Tokens:    tokens,
	}
	if cfg.Metrics.Enabled {
		m := metrics.New()
		deps.Metrics = m
		ledgerOpts = append(ledgerOpts, inventory.WithRecorder(m))
	}
	deps.Ledger = inventory.NewService(st.inventory, log, ledgerOpts...)

	srv := httpx.New(cfg.HTTP.Addr, httpx.NewRouter(deps))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server started", "addr", cfg.HTTP.Addr, "store", cfg.Store.Driver)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (*stores, error) {
	if cfg.Store.Driver == "memory" {
		log.Warn("using in-memory store; data is lost on restart")
		m := memory.New()
		return &stores{users: m.Users(), materials: m.Materials(), inventory: m.Inventory(), close: func() {}}, nil
	}

	if cfg.Postgres.Migrate {
		if err := db.Migrate(cfg.Postgres.DSN); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		log.Info("migrations applied")
	}
	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	log.Info("db connected")
	return &stores{
		users:     users.NewRepo(pool),
		materials: materials.NewRepo(pool),
		inventory: inventory.NewRepo(pool),
		close:     pool.Close,
	}, nil
}

func newNotifier(cfg config.Config, log *slog.Logger) inventory.Notifier {
	if !cfg.TelegramEnabled() {
		return notify.Nop{}
	}
	tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, log)
	if err != nil {
		log.Warn("telegram notifier disabled", "err", err)
		return notify.Nop{}
	}
	return tg
}
