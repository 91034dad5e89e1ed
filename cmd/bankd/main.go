package main

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crystalrealm/ecobank/internal/config"
	"github.com/crystalrealm/ecobank/internal/gametime"
	"github.com/crystalrealm/ecobank/internal/handlers"
	"github.com/crystalrealm/ecobank/internal/middleware"
	"github.com/crystalrealm/ecobank/internal/protection"
	"github.com/crystalrealm/ecobank/internal/scheduler"
	"github.com/crystalrealm/ecobank/internal/services"
	"github.com/crystalrealm/ecobank/internal/storage"
	"github.com/crystalrealm/ecobank/internal/wallet"
)

func main() {
	// Optional; real deployments set env vars directly.
	_ = godotenv.Load()

	logger := newLogger()
	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load(os.Getenv("ECOBANK_CONFIG_FILE"))
	if err != nil {
		return err
	}

	cal := gametime.NewCalendar(cfg.General.SecondsPerGameDay)

	store, err := storage.Open(cfg.Database.Path, logger, storage.Options{
		InitialCreditScore: cfg.Credit.InitialScore,
		MaxAuditEntries:    cfg.Protection.MaxAuditLogEntries,
	})
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.LoadAll(); err != nil {
		return err
	}

	clock := services.SystemClock{}
	taxes := services.NewTaxService(cfg.Taxes, logger)
	inflation := services.NewInflationService(cfg.Inflation, logger,
		rand.New(rand.NewSource(time.Now().UnixNano())))
	credit := services.NewCreditService(store, cfg.Credit, clock, logger)
	deposits := services.NewDepositService(cfg.Deposits, taxes, credit, inflation, cal, logger)
	loans := services.NewLoanService(cfg.Loans, credit, inflation, cal, logger)
	guard := protection.NewAbuseGuard(cfg.Protection, logger, time.Now)
	metrics := services.NewMetricsService(prometheus.DefaultRegisterer)

	// Standalone mode: in-memory wallet and log notifications. A game server
	// integration replaces both adapters.
	w := wallet.NewMemory()
	notifier := services.LogNotifier{Logger: logger}

	bank := services.NewBankService(
		store, w, notifier, guard,
		deposits, loans, credit, taxes, inflation, metrics,
		cfg.Protection, clock, logger,
	)

	if cfg.IsDevelopment() {
		if err := services.SeedSampleData(bank, w, 10, 1, logger); err != nil {
			logger.Warn("sample data seeding failed", "error", err)
		}
	}

	sched := scheduler.New(bank, cfg, cal, logger)
	sched.Start(context.Background())
	defer sched.Stop()

	e := newServer(cfg, bank, store, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(cfg.Server.Host + ":" + cfg.Server.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}

func newServer(cfg *config.Config, bank *services.BankService, store *storage.GormStore, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Validator = handlers.NewRequestValidator()

	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	rl := middleware.NewRateLimiter(cfg.Protection.RateLimitPerSecond, cfg.Protection.RateLimitBurst)
	e.Use(rl.Middleware())

	health := handlers.NewHealthHandler(store.Ping)
	e.GET("/health", health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	handlers.NewBankHandler(bank, logger).Register(api)
	handlers.NewAdminHandler(bank, logger).Register(api.Group("/admin"))

	return e
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("ECOBANK_DEBUG") == "true" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
