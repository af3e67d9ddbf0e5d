package router

import (
	"time"

	"github.com/NomadCrew/nomad-crew-ledger/config"
	"github.com/NomadCrew/nomad-crew-ledger/handlers"
	"github.com/NomadCrew/nomad-crew-ledger/logger"
	"github.com/NomadCrew/nomad-crew-ledger/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config            *config.Config
	JWTValidator      middleware.Validator
	Membership        middleware.MembershipChecker
	RedisClient       *redis.Client // nil disables mutation rate limiting
	TripHandler       *handlers.TripHandler
	ExpenseHandler    *handlers.ExpenseHandler
	SettlementHandler *handlers.SettlementHandler
	BalanceHandler    *handlers.BalanceHandler
	HealthHandler     *handlers.HealthHandler
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	log := logger.GetLogger()
	r := gin.New()

	if err := r.SetTrustedProxies(deps.Config.Server.TrustedProxies); err != nil {
		log.Warnw("Invalid trusted proxies, trusting none", "proxies", deps.Config.Server.TrustedProxies, "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	// Global Middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config))

	// Health and Metrics Routes (no auth)
	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if !deps.Config.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	mutationLimit := func(c *gin.Context) { c.Next() }
	if deps.RedisClient != nil {
		window := time.Duration(deps.Config.RateLimit.WindowSeconds) * time.Second
		mutationLimit = middleware.MutationRateLimiter(deps.RedisClient, deps.Config.RateLimit.MutationsPerMinute, window)
	} else {
		log.Warn("Redis disabled, ledger mutations are not rate limited")
	}

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(deps.JWTValidator))
	{
		v1.GET("/dashboard", deps.TripHandler.GetDashboardHandler)
		v1.GET("/trips", deps.TripHandler.ListTripsHandler)

		trip := v1.Group("/trips/:id")
		trip.Use(middleware.RequireTripMember(deps.Membership, "id"))
		{
			trip.GET("", deps.TripHandler.GetTripHandler)
			trip.POST("/archive", mutationLimit, deps.TripHandler.ArchiveTripHandler)
			trip.POST("/unarchive", mutationLimit, deps.TripHandler.UnarchiveTripHandler)

			expenseRoutes := trip.Group("/expenses")
			{
				expenseRoutes.GET("", deps.ExpenseHandler.ListExpensesHandler)
				expenseRoutes.POST("", mutationLimit, deps.ExpenseHandler.CreateExpenseHandler)
				expenseRoutes.GET("/:expenseId", deps.ExpenseHandler.GetExpenseHandler)
				expenseRoutes.PUT("/:expenseId", mutationLimit, deps.ExpenseHandler.UpdateExpenseHandler)
				expenseRoutes.DELETE("/:expenseId", mutationLimit, deps.ExpenseHandler.DeleteExpenseHandler)
			}

			settlementRoutes := trip.Group("/settlements")
			{
				settlementRoutes.GET("", deps.SettlementHandler.ListSettlementsHandler)
				settlementRoutes.POST("", mutationLimit, deps.SettlementHandler.CreateSettlementHandler)
				settlementRoutes.GET("/suggestions", deps.SettlementHandler.SuggestSettlementsHandler)
				settlementRoutes.DELETE("/:settlementId", mutationLimit, deps.SettlementHandler.DeleteSettlementHandler)
			}

			trip.GET("/balances", deps.BalanceHandler.GetTripBalancesHandler)
			trip.GET("/members/:memberId/breakdown", deps.BalanceHandler.GetMemberBreakdownHandler)
		}
	}

	return r
}
