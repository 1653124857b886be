package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/uni-admissions-api/api/swagger"
	"github.com/noah-isme/uni-admissions-api/internal/handler"
	"github.com/noah-isme/uni-admissions-api/internal/middleware"
	"github.com/noah-isme/uni-admissions-api/internal/models"
	"github.com/noah-isme/uni-admissions-api/internal/repository"
	"github.com/noah-isme/uni-admissions-api/internal/service"
	"github.com/noah-isme/uni-admissions-api/pkg/cache"
	"github.com/noah-isme/uni-admissions-api/pkg/config"
	"github.com/noah-isme/uni-admissions-api/pkg/database"
	"github.com/noah-isme/uni-admissions-api/pkg/letter"
	"github.com/noah-isme/uni-admissions-api/pkg/logger"
	"github.com/noah-isme/uni-admissions-api/pkg/mailer"
	corsmiddleware "github.com/noah-isme/uni-admissions-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/uni-admissions-api/pkg/middleware/requestid"
	"github.com/noah-isme/uni-admissions-api/pkg/storage"
)

// @title University Admissions & HR API
// @version 1.0.0
// @description Admissions backend with transactional student number allocation, offer letters, and the HR job board
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	letterStore, err := storage.NewLocalStorage(cfg.Letters.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init letter storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Letters.SignedURLSecret, cfg.Letters.SignedURLTTL)

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	rangeRepo := repository.NewRangeRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	letterRepo := repository.NewOfferLetterRepository(db)
	jobRepo := repository.NewJobRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, redisClient != nil)

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "uni-admissions-api",
	})

	eventLogger := service.NewEventLogger(letterRepo, cfg.Events.Workers, cfg.Events.BufferSize, logr)

	letterSvc := service.NewOfferLetterService(letterRepo, applicationRepo, letter.NewGenerator(), letterStore, signer, eventLogger, metricsSvc, cfg.Letters, logr)
	smtpMailer := mailer.NewSMTPMailer(mailer.Config{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		Username:    cfg.SMTP.Username,
		Password:    cfg.SMTP.Password,
		FromAddress: cfg.SMTP.FromAddress,
		FromName:    cfg.SMTP.FromName,
	})
	allocationSvc := service.NewAllocationService(rangeRepo, letterSvc, smtpMailer, metricsSvc, nil, logr)
	rangeSvc := service.NewRangeService(rangeRepo, nil, logr)
	applicationSvc := service.NewApplicationService(applicationRepo, nil, logr)
	ledgerSvc := service.NewLedgerService(ledgerRepo, logr)
	jobSvc := service.NewJobService(jobRepo, nil, logr)
	dashboardSvc := service.NewDashboardService(dashboardRepo, rangeRepo, ledgerRepo, cacheSvc, cfg.Dashboard.CacheTTL, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	allocationHandler := handler.NewAllocationHandler(allocationSvc, dashboardSvc)
	rangeHandler := handler.NewRangeHandler(rangeSvc, dashboardSvc)
	applicationHandler := handler.NewApplicationHandler(applicationSvc, dashboardSvc)
	letterHandler := handler.NewOfferLetterHandler(letterSvc)
	ledgerHandler := handler.NewLedgerHandler(ledgerSvc)
	jobHandler := handler.NewJobHandler(jobSvc, dashboardSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eventLogger.Start(ctx)
	defer eventLogger.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Public routes.
	r.POST("/auth/login", authHandler.Login)
	r.POST("/auth/refresh", authHandler.Refresh)
	r.GET("/offer-letters/verify/:code", middleware.OptionalJWT(authSvc), letterHandler.Verify)
	r.GET("/offer-letters/file", letterHandler.File)
	r.POST("/applications", applicationHandler.Create)
	r.GET("/applications/:reference", applicationHandler.Get)
	r.PUT("/applications/:reference/personal", applicationHandler.UpdatePersonal)
	r.POST("/applications/:reference/education", applicationHandler.AddEducation)
	r.POST("/applications/:reference/experience", applicationHandler.AddExperience)
	r.POST("/applications/:reference/documents", applicationHandler.AddDocument)
	r.GET("/jobs", jobHandler.ListPostings)
	r.GET("/jobs/:id", jobHandler.GetPosting)
	r.POST("/jobs/:id/applications", jobHandler.SubmitApplication)

	// Authenticated staff routes.
	staff := r.Group("", middleware.JWT(authSvc))
	{
		staff.POST("/auth/logout", authHandler.Logout)
		staff.GET("/auth/me", authHandler.Me)
		staff.POST("/auth/change-password", authHandler.ChangePassword)
		staff.GET("/metrics/summary", metricsHandler.Summary)

		anyStaff := staff.Group("", middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleStaff))
		{
			anyStaff.GET("/applications", applicationHandler.List)
			anyStaff.GET("/offer-letters/download", letterHandler.Download)
			anyStaff.GET("/offer-letters/link", letterHandler.Link)
			anyStaff.POST("/applications/:reference/offer-letter/regenerate",
				middleware.Audit(userRepo, models.AuditActionLetterRegenerate, "offer_letter"),
				letterHandler.Regenerate)
			anyStaff.POST("/applications/:reference/offer-letter/print", letterHandler.Print)
			anyStaff.GET("/jobs/:id/applications", jobHandler.ListApplications)
			anyStaff.PUT("/job-applications/:id/status", jobHandler.UpdateApplicationStatus)
		}

		admins := staff.Group("", middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin))
		{
			admins.POST("/number-ranges",
				middleware.Audit(userRepo, models.AuditActionRangeCreate, "number_range"),
				rangeHandler.Create)
			admins.GET("/number-ranges", rangeHandler.List)
			admins.GET("/number-ranges/active", rangeHandler.Active)
			admins.POST("/applications/:reference/assign-number",
				middleware.Audit(userRepo, models.AuditActionNumberAssign, "application"),
				allocationHandler.Assign)
			admins.POST("/applications/:reference/reject",
				middleware.Audit(userRepo, models.AuditActionApplicationEdit, "application"),
				applicationHandler.Reject)
			admins.GET("/assignment-ledger", ledgerHandler.List)
			admins.GET("/assignment-ledger/export", ledgerHandler.Export)
			admins.POST("/jobs",
				middleware.Audit(userRepo, models.AuditActionJobEdit, "job_posting"),
				jobHandler.CreatePosting)
			admins.PUT("/jobs/:id",
				middleware.Audit(userRepo, models.AuditActionJobEdit, "job_posting"),
				jobHandler.UpdatePosting)
		}

		if cfg.Dashboard.Enabled {
			staff.GET("/dashboard", dashboardHandler.Overview)
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}
