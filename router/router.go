package router

import (
	"net/http"
	"os"

	"profiles/api"
	"profiles/config"
	"profiles/middleware"
	"profiles/service"

	_ "profiles/docs"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// SetupRouter 组装路由与中间件
// /health 和 /swagger 不鉴权不记日志，/api 下所有路由统一走关联ID、请求日志与 X-API-KEY 校验
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	requestLogger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	userHandler := api.NewUserHandler(db)
	aiHandler := api.NewAIHandler(db,
		service.NewContentClient(&cfg.Query),
		service.NewProfileGenerator(&cfg.OpenAI))
	exportHandler := api.NewExportHandler(db)

	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.CorrelationID())
	apiGroup.Use(middleware.RequestLogger(requestLogger))
	apiGroup.Use(middleware.APIKeyAuth(cfg.Auth.APIKey))
	{
		apiGroup.POST("/users", userHandler.CreateOrUpdateUser)
		apiGroup.GET("/users/:user_id", userHandler.GetUser)

		apiGroup.POST("/ais", aiHandler.CreateOrUpdateAI)
		apiGroup.GET("/ais/content/:content_id", aiHandler.GetAIByContent)

		apiGroup.GET("/export/csv", exportHandler.ExportCSV)
		apiGroup.GET("/export/excel", exportHandler.ExportExcel)
	}

	return r
}
