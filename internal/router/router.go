package router

import (
	"github.com/Koi-0105-Monkey/momo-backend/internal/config"
	publichandlers "github.com/Koi-0105-Monkey/momo-backend/internal/http/handlers/public"
	"github.com/Koi-0105-Monkey/momo-backend/internal/logger"
	"github.com/Koi-0105-Monkey/momo-backend/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)

	// 中间件
	r.Use(RecoveryMiddleware())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 健康探针
	r.GET("/", publicHandler.HealthCheck)

	// 回调接口
	api := r.Group("/api")
	{
		api.POST("/momo-webhook", publicHandler.MomoWebhook)
	}

	return r
}
