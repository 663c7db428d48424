package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campushub/timetable-api/api/swagger"
	"github.com/campushub/timetable-api/internal/handler"
	"github.com/campushub/timetable-api/internal/middleware"
	"github.com/campushub/timetable-api/internal/repository"
	"github.com/campushub/timetable-api/internal/service"
	"github.com/campushub/timetable-api/pkg/cache"
	"github.com/campushub/timetable-api/pkg/config"
	"github.com/campushub/timetable-api/pkg/database"
	"github.com/campushub/timetable-api/pkg/logger"
	corsmiddleware "github.com/campushub/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campushub/timetable-api/pkg/middleware/requestid"
)

// @title CampusHub Timetable API
// @version 1.0.0
// @description Shared weekly timetable engine: recurring sessions, conflict detection, collaboration and calendar exports
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close() //nolint:errcheck
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	timetableCache := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TimetableTTL, logr, cfg.Redis.Enabled)
	occurrenceCache := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.OccurrenceTTL, logr, cfg.Redis.Enabled)

	timetableRepo := repository.NewTimetableRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	collaboratorRepo := repository.NewCollaboratorRepository(db)
	courseRepo := repository.NewCourseRepository(db)

	validate := validator.New()

	authSvc := service.NewAuthService(service.AuthConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	}, logr)
	timetableSvc := service.NewTimetableService(timetableRepo, sessionRepo, collaboratorRepo, timetableCache, validate, logr)
	sessionSvc := service.NewSessionService(sessionRepo, timetableRepo, collaboratorRepo, courseRepo, timetableCache, metricsSvc, validate, logr)
	collaborationSvc := service.NewCollaborationService(collaboratorRepo, timetableRepo, timetableCache, validate, logr)
	calendarSvc := service.NewCalendarService(sessionRepo, timetableRepo, collaboratorRepo, occurrenceCache,
		cfg.Occurrence.WeeksBefore, cfg.Occurrence.WeeksAfter, logr)
	exportSvc := service.NewExportService(timetableRepo, calendarSvc, logr)

	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc)
	collaboratorHandler := handler.NewCollaboratorHandler(collaborationSvc)
	calendarHandler := handler.NewCalendarHandler(calendarSvc, exportSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))
	{
		api.POST("/timetables", timetableHandler.Create)
		api.GET("/timetables", timetableHandler.List)
		api.GET("/timetables/:id", timetableHandler.Get)
		api.PATCH("/timetables/:id", timetableHandler.Update)
		api.DELETE("/timetables/:id", timetableHandler.Delete)

		api.POST("/timetables/:id/sessions", sessionHandler.Create)
		api.PATCH("/sessions/:id", sessionHandler.Update)
		api.DELETE("/sessions/:id", sessionHandler.Delete)

		api.POST("/timetables/:id/collaborators", collaboratorHandler.Invite)
		api.DELETE("/timetables/:id/collaborators/:userId", collaboratorHandler.Remove)
		api.POST("/timetables/:id/invitation/accept", collaboratorHandler.Accept)
		api.POST("/timetables/:id/invitation/reject", collaboratorHandler.Reject)

		api.GET("/timetables/:id/conflicts", calendarHandler.Conflicts)
		api.GET("/timetables/:id/occurrences", calendarHandler.Occurrences)
		api.GET("/timetables/:id/export", calendarHandler.Export)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
