package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/workkeaco-commits/networkk-web-sub001/internal/config"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/db"
	httpHandlers "github.com/workkeaco-commits/networkk-web-sub001/internal/http/handlers"
	httpRouter "github.com/workkeaco-commits/networkk-web-sub001/internal/http/router"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/logger"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/mailer"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/repository"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/service"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	mail := mailer.New(cfg.ResendAPIKey, cfg.MailFrom)

	// Репозитории.
	contractRepo := repository.NewContractRepository(dbConn)
	milestoneRepo := repository.NewMilestoneRepository(dbConn)
	paymentRepo := repository.NewPaymentRepository(dbConn)
	walletRepo := repository.NewWalletRepository(dbConn)
	userRepo := repository.NewUserRepository(dbConn)

	// Сервисы движка расчётов.
	scheduleService := service.NewScheduleService(contractRepo, milestoneRepo, paymentRepo)
	submissionService := service.NewSubmissionService(contractRepo, milestoneRepo, paymentRepo, userRepo, mail)
	settlementService := service.NewSettlementService(contractRepo, milestoneRepo, paymentRepo)
	walletService := service.NewWalletService(walletRepo)

	// HTTP хэндлеры.
	contractHandler := httpHandlers.NewContractHandler(scheduleService, milestoneRepo)
	milestoneHandler := httpHandlers.NewMilestoneHandler(submissionService, milestoneRepo)
	settlementHandler := httpHandlers.NewSettlementHandler(settlementService, cfg.SweepBatchLimit)
	walletHandler := httpHandlers.NewWalletHandler(walletService)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, contractHandler, milestoneHandler, settlementHandler, walletHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
