package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"validity-service/internal/api/handlers"
	"validity-service/internal/api/middleware"
	"validity-service/internal/config"
	"validity-service/internal/db"
	"validity-service/internal/db/queries"
	"validity-service/internal/logger"
	"validity-service/internal/models"
	"validity-service/internal/session"
	"validity-service/internal/utils"
)

// SetupRouter собирает HTTP API сервиса
func SetupRouter(cfg *config.Config, database *db.Database, devices session.DeviceRegistry, log *zap.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(logger.Recovery(log), logger.GinMiddleware(log))

	jwtManager := utils.NewJWTManager(&cfg.JWT)

	authQueries := queries.NewAuthQueries(database)
	teamQueries := queries.NewTeamQueries(database)
	productQueries := queries.NewProductQueries(database, log)
	batchQueries := queries.NewBatchQueries(database)

	authHandler := handlers.NewAuthHandler(jwtManager, authQueries, utils.NewPasswordChecker(), devices)
	teamHandler := handlers.NewTeamHandler(teamQueries, utils.NewInviteCode)
	productHandler := handlers.NewProductHandler(productQueries, cfg.Expiry.NearExpiryDays, time.Now)
	batchHandler := handlers.NewBatchHandler(batchQueries, productQueries)

	// Публичные маршруты (без авторизации)
	publicRoutes := router.Group("")
	{
		publicRoutes.POST("/register", authHandler.Register)
		publicRoutes.POST("/login", authHandler.Login)
	}

	authorized := router.Group("", middleware.AuthMiddleware(jwtManager, authQueries, devices))
	{
		authorized.POST("/teams", teamHandler.CreateTeam)
		authorized.GET("/teams", teamHandler.ListTeams)
		authorized.POST("/teams/join", teamHandler.JoinTeam)
	}

	team := authorized.Group("/teams/:teamId", middleware.RequireTeamMember(teamQueries))
	{
		team.GET("/products", productHandler.ListProducts)
		team.POST("/products", productHandler.CreateProduct)
		team.GET("/products/:productId", productHandler.GetProduct)
		team.DELETE("/products/:productId",
			middleware.RequireRole(models.RoleManager, models.RoleSupervisor),
			productHandler.DeleteProduct)

		team.POST("/products/:productId/batches", batchHandler.CreateBatch)
		team.PUT("/batches/:batchId/status", batchHandler.UpdateStatus)
		team.DELETE("/batches/:batchId", batchHandler.DeleteBatch)
	}

	return router, nil
}
