package router

import (
	"github.com/gin-gonic/gin"

	"github.com/workkeaco-commits/networkk-web-sub001/internal/config"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/http/handlers"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/http/middleware"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	contractHandler *handlers.ContractHandler,
	milestoneHandler *handlers.MilestoneHandler,
	settlementHandler *handlers.SettlementHandler,
	walletHandler *handlers.WalletHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	// Триггер свипа для внешнего планировщика: общий секрет вместо JWT,
	// плюс ограничение частоты на случай зацикленного планировщика.
	settlement := api.Group("/settlement")
	settlement.Use(middleware.SweepSecretMiddleware(cfg.SweepSecret))
	settlement.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		settlement.POST("/run", settlementHandler.Run)
	}

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.POST("/contracts/:id/schedule", middleware.UUIDValidator("id"), contractHandler.Schedule)
		protected.GET("/contracts/:id/milestones", middleware.UUIDValidator("id"), contractHandler.ListMilestones)

		protected.GET("/milestones/:id", middleware.UUIDValidator("id"), milestoneHandler.GetMilestone)
		protected.POST("/milestones/:id/submissions", middleware.UUIDValidator("id"), milestoneHandler.Submit)
		protected.POST("/milestones/:id/decision", middleware.UUIDValidator("id"), milestoneHandler.Decide)

		protected.GET("/wallets/me", walletHandler.GetMyWallet)
	}

	return r
}
