package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAK-124/attendance-backend-go/internal/attendance"
	"github.com/SAK-124/attendance-backend-go/internal/config"
	"github.com/SAK-124/attendance-backend-go/internal/database"
	"github.com/SAK-124/attendance-backend-go/internal/handler"
	"github.com/SAK-124/attendance-backend-go/internal/middleware"
	"github.com/SAK-124/attendance-backend-go/internal/repository"
	"github.com/SAK-124/attendance-backend-go/internal/service"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config) (*gin.Engine, error) {
	engine, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}

	runRepo := repository.NewRunRepository(database.GetDB())
	statsRepo := repository.NewStatsRepository(database.GetDB())
	attendanceService := service.NewAttendanceService(engine, runRepo)
	runService := service.NewRunService(runRepo)
	statsService := service.NewStatsService(statsRepo)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	runHandler := handler.NewRunHandler(runService)
	statsHandler := handler.NewStatsHandler(statsService)

	r := gin.New()
	r.Use(middleware.Logger())
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = cfg.MaxMemory

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Attendance Backend API is running",
		})
	})

	// API 路由组
	api := r.Group("/api/v1")
	{
		// 考勤处理接口
		att := api.Group("/attendance")
		if cfg.AuthRequired {
			att.Use(middleware.Auth(cfg.JWTSecret))
		}
		{
			// 上传接口限流
			uploads := att.Group("")
			uploads.Use(middleware.RateLimit(10, time.Minute))
			{
				uploads.POST("/process", attendanceHandler.ProcessUpload)
				uploads.POST("/keys", attendanceHandler.ResolveKeys)
			}

			// 处理记录查询接口
			att.GET("/runs", runHandler.ListRuns)
			att.GET("/runs/:id", runHandler.GetRun)
			att.GET("/runs/:id/verdicts", runHandler.ListVerdicts)
			att.GET("/runs/:id/reconnects", runHandler.ListReconnects)
			att.GET("/runs/:id/merges", runHandler.ListMerges)

			// 统计接口
			stats := att.Group("/stats")
			{
				stats.GET("/overview", statsHandler.GetOverview)
				stats.GET("/verdicts", statsHandler.GetVerdictDistribution)
				stats.GET("/flags", statsHandler.GetFlagCounts)
				stats.GET("/reconnects", statsHandler.GetReconnectLeaders)
			}
		}
	}

	return r, nil
}

func newEngine(cfg *config.Config) (*attendance.Engine, error) {
	opts := attendance.Options{
		ExclusionPatterns: cfg.Rules.ExcludedNamePatterns,
	}
	if cfg.Rules.AliasGapMinutes > 0 {
		opts.AliasGap = time.Duration(cfg.Rules.AliasGapMinutes * float64(time.Minute))
	}
	if cfg.Rules.ReconnectToleranceSeconds > 0 {
		opts.ReconnectTolerance = time.Duration(cfg.Rules.ReconnectToleranceSeconds * float64(time.Second))
	}
	return attendance.NewEngine(opts)
}
