package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/course-reg-api/api/swagger"
	"github.com/noah-isme/course-reg-api/internal/handler"
	"github.com/noah-isme/course-reg-api/internal/middleware"
	"github.com/noah-isme/course-reg-api/internal/models"
	"github.com/noah-isme/course-reg-api/internal/repository"
	"github.com/noah-isme/course-reg-api/internal/service"
	"github.com/noah-isme/course-reg-api/pkg/cache"
	"github.com/noah-isme/course-reg-api/pkg/config"
	"github.com/noah-isme/course-reg-api/pkg/database"
	"github.com/noah-isme/course-reg-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-reg-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-reg-api/pkg/middleware/requestid"
)

// @title Course Registration API
// @version 1.0.0
// @description Student course registration, eligibility and grading service
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Availability.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, availability cache disabled", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	students := repository.NewStudentRepository(db)
	subjects := repository.NewSubjectRepository(db)
	curriculum := repository.NewCurriculumRepository(db)
	registrations := repository.NewRegistrationRepository(db)

	authSvc := service.NewAuthService(students, validate, logr, service.AuthConfig{
		Secret:            cfg.JWT.Secret,
		Expiration:        cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		AdminEmail:        cfg.Admin.Email,
		AdminPasswordHash: cfg.Admin.PasswordHash,
	})
	eligibilitySvc := service.NewEligibilityService(students, subjects, registrations, logr)
	availabilitySvc := service.NewAvailabilityService(curriculum, subjects, registrations, eligibilitySvc, redisClient, cfg.Availability.CacheTTL, metricsSvc, logr)
	registrationSvc := service.NewRegistrationService(registrations, eligibilitySvc, subjects, availabilitySvc, validate, logr)
	gradeSvc := service.NewGradeService(registrations, availabilitySvc, logr)
	studentSvc := service.NewStudentService(students, registrations, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	subjectHandler := handler.NewSubjectHandler(availabilitySvc)
	registrationHandler := handler.NewRegistrationHandler(registrationSvc)
	gradeHandler := handler.NewGradeHandler(gradeSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

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
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Scrape)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/signin", authHandler.SignIn)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.GET("/subjects", subjectHandler.List)
	authed.GET("/subjects/available", middleware.RequireRoles(models.RoleStudent), subjectHandler.Available)
	authed.GET("/students/me", middleware.RequireRoles(models.RoleStudent), studentHandler.Me)
	authed.POST("/registrations", middleware.RequireRoles(models.RoleStudent), registrationHandler.Create)

	authed.GET("/students", middleware.RequireRoles(models.RoleAdmin), studentHandler.List)
	authed.GET("/registrations", middleware.RequireRoles(models.RoleAdmin), registrationHandler.List)
	authed.GET("/registrations/export", middleware.RequireRoles(models.RoleAdmin), registrationHandler.Export)
	authed.PUT("/registrations/:id/grade", middleware.RequireRoles(models.RoleAdmin), gradeHandler.Assign)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
