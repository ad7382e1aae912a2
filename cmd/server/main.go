// Package main runs the conference registration HTTP server with graceful
// shutdown and an optional in-process email worker.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/flc-events/backend/config"
	"github.com/flc-events/backend/internal/access"
	"github.com/flc-events/backend/internal/advisors"
	"github.com/flc-events/backend/internal/emaillogs"
	"github.com/flc-events/backend/internal/mailer"
	"github.com/flc-events/backend/internal/middleware"
	"github.com/flc-events/backend/internal/registrations"
	"github.com/flc-events/backend/internal/reports"
	"github.com/flc-events/backend/internal/token"
	"github.com/flc-events/backend/internal/worker"
	"github.com/flc-events/backend/pkg/database"
	"github.com/flc-events/backend/pkg/queue"
	"github.com/flc-events/backend/pkg/redis"
	"github.com/flc-events/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	tokens := token.NewService(cfg.Token.Secret, cfg.Token.MaxAgeDays)
	grantStore := access.NewRedisStore(rdb.Client)
	grants := access.NewManager(grantStore, cfg.Session.TTLDays)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Advisors
	advisorRepo := advisors.NewRepository(pool)
	advisorHandler := advisors.NewHandler(advisorRepo, tokens, jobQueue,
		cfg.Server.BaseURL, cfg.Staff.SummaryEmail, logger)

	// Access flow
	accessHandler := access.NewHandler(advisorRepo, tokens, grants, grantStore, jobQueue,
		cfg.Server.BaseURL, cfg.Session.ResendCooldownSec, logger)

	// Registrations
	registrationRepo := registrations.NewRepository(pool)
	registrationHandler := registrations.NewHandler(registrationRepo, advisorRepo, jobQueue,
		cfg.Registration.FeePerPerson, cfg.Staff.SummaryEmail, logger)

	// Reports
	reportCompiler := reports.NewCompiler(pool, cfg.Registration.FeePerPerson)
	reportHandler := reports.NewHandler(reportCompiler, jobQueue, cfg.Staff.SummaryEmail, logger)

	// Email pipeline
	emailLogsRepo := emaillogs.NewRepository(pool)
	emailLogsHandler := emaillogs.NewHandler(emailLogsRepo)
	sender := mailer.FromConfig(cfg.Email, logger)
	emailProcessor := worker.NewEmailProcessor(emailLogsRepo, sender, jobQueue, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public: category selector and access flow
	router.GET("/categories", advisorHandler.ListCategories)
	router.GET("/advisors/by-category", advisorHandler.ListByCategory)
	router.POST("/advisors/request", advisorHandler.RequestNewUser)
	router.POST("/access/request", accessHandler.RequestAccess)
	router.GET("/access/validate/:token", accessHandler.ValidateToken)

	// Grant-gated API (Bearer session token required)
	api := router.Group("")
	api.Use(middleware.RequireGrant(grants))
	{
		api.POST("/access/finish", accessHandler.Finish)

		api.GET("/advisors/:id/participants", registrationHandler.List)
		api.POST("/advisors/:id/participants", registrationHandler.Add)
		api.PATCH("/advisors/:id/participants/:regId", registrationHandler.Edit)
		api.DELETE("/advisors/:id/participants/:regId", registrationHandler.Delete)
		api.GET("/advisors/:id/totals", registrationHandler.Totals)
	}

	// Staff API (X-Staff-Key required; disabled when no key is configured)
	staff := router.Group("/staff")
	staff.Use(middleware.RequireStaffKey(cfg.Staff.APIKey))
	{
		staff.GET("/advisors", advisorHandler.List)
		staff.POST("/advisors", advisorHandler.Create)
		staff.PATCH("/advisors/:id", advisorHandler.Update)
		staff.DELETE("/advisors/:id", advisorHandler.Delete)
		staff.POST("/advisors/:id/resend-validation", advisorHandler.ResendValidation)

		staff.GET("/reports/registrations.csv", reportHandler.DownloadCSV)
		staff.POST("/reports/email", reportHandler.EmailCSV)

		staff.GET("/emails", emailLogsHandler.List)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Background worker (email delivery); run cmd/worker instead to scale it
	// out separately.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go emailProcessor.Run(workerCtx)
	logger.Info("email worker started")

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
