package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	httpdelivery "github.com/Xausdorf/swish-pay-hub/internal/delivery/http"
	"github.com/Xausdorf/swish-pay-hub/internal/infrastructure/config"
	"github.com/Xausdorf/swish-pay-hub/internal/infrastructure/logger"
	"github.com/Xausdorf/swish-pay-hub/internal/infrastructure/postgres"
	"github.com/Xausdorf/swish-pay-hub/internal/infrastructure/qrgenerator"
	"github.com/Xausdorf/swish-pay-hub/internal/infrastructure/swishclient"
	"github.com/Xausdorf/swish-pay-hub/internal/usecase/callback"
	"github.com/Xausdorf/swish-pay-hub/internal/usecase/createpayment"
	"github.com/Xausdorf/swish-pay-hub/internal/usecase/createrefund"
	"github.com/Xausdorf/swish-pay-hub/internal/usecase/generateqr"
	"github.com/Xausdorf/swish-pay-hub/internal/usecase/getpayment"
	"github.com/Xausdorf/swish-pay-hub/internal/usecase/getrefund"
	"github.com/Xausdorf/swish-pay-hub/swish"
)

const (
	readHeaderTimeout     = 5 * time.Second
	gracefulShutdownDelay = 5 * time.Second

	dbMaxConns        = 10
	dbMinConns        = 2
	dbMaxConnLifetime = 30 * time.Minute
	dbMaxConnIdleTime = 5 * time.Minute
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := initDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database init failed", "error", err)
		cancel()
		os.Exit(1)
	}
	defer pool.Close()

	api, err := swish.New(swish.Config{
		MerchantAlias: cfg.Swish.MerchantAlias,
		CertPath:      cfg.Swish.CertPath,
		KeyPath:       cfg.Swish.KeyPath,
		Passphrase:    cfg.Swish.Passphrase,
		RootCertPath:  cfg.Swish.RootCertPath,
		BaseURL:       cfg.Swish.BaseURL,
		Timeout:       cfg.Swish.Timeout,
	}, swish.WithLogger(log.With("component", "swish")))
	if err != nil {
		log.Error("swish client init failed", "error", err)
		pool.Close()
		cancel()
		os.Exit(1)
	}

	uow := postgres.NewUnitOfWork(pool)
	paymentClient := swishclient.NewClient(api, cfg.PaymentCallbackURL(), cfg.RefundCallbackURL())
	qrGen := qrgenerator.NewGenerator(cfg.QRCodeSize)

	handler := httpdelivery.NewHandler(httpdelivery.UseCases{
		CreatePayment: createpayment.NewUseCase(uow, paymentClient),
		GetPayment:    getpayment.NewUseCase(uow, paymentClient),
		CreateRefund:  createrefund.NewUseCase(uow, paymentClient),
		GetRefund:     getrefund.NewUseCase(uow, paymentClient),
		Callback:      callback.NewUseCase(uow),
		GenerateQR:    generateqr.NewUseCase(uow, qrGen),
	}, log)
	router := httpdelivery.NewRouter(handler)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info("HTTP server starting",
			"addr", cfg.HTTPAddr,
			"swish_base_url", cfg.Swish.BaseURL,
			"merchant_alias", api.MerchantAlias(),
		)
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			log.Error("http serve failed", "error", serveErr)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownDelay)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}

func initDB(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}

	cfg.MaxConns = dbMaxConns
	cfg.MinConns = dbMinConns
	cfg.MaxConnLifetime = dbMaxConnLifetime
	cfg.MaxConnIdleTime = dbMaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}
