package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"pqrssi-portal/config"
	"pqrssi-portal/controllers"
	"pqrssi-portal/middleware"
	"pqrssi-portal/routes"
	"pqrssi-portal/services"
	"pqrssi-portal/views"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const sessionPurgeInterval = 15 * time.Minute

func main() {
	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		config.Logger.Fatal().Err(err).Msg("invalid configuration")
	}

	logFile, _ := config.InitLogging(cfg.Environment)
	if logFile != nil {
		defer logFile.Close()
	}
	l := config.Logger
	if envErr != nil {
		l.Info().Msg("no .env file found, using environment variables")
	}

	// Initialize database
	if err := config.InitDB(cfg); err != nil {
		l.Fatal().Err(err).Msg("db connect failed")
	}
	defer config.CloseDB()

	sqlDB, err := config.DB.DB()
	if err != nil {
		l.Fatal().Err(err).Msg("db handle unavailable")
	}

	// Services
	var notifier services.Notifier
	if cfg.Mail.Enabled() {
		notifier = services.NewMailNotifier(config.NewMailer(cfg.Mail))
		l.Info().Str("smtp_host", cfg.Mail.Host).Msg("status mail notifications enabled")
	}
	catalog := services.NewCatalogService(config.DB)
	workflow := services.NewWorkflow(cfg.StatusTransitions)
	accounts := services.NewAuthService(config.DB)
	sessions := services.NewSessionService(config.DB, cfg.SessionSecret, cfg.SessionTTL)
	requests := services.NewRequestService(config.DB, catalog, workflow, notifier)

	// Router
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Recovery(l))
	router.Use(middleware.RequestLogger(l))
	router.Use(middleware.SecurityHeaders())

	tmpl, err := views.Load()
	if err != nil {
		l.Fatal().Err(err).Msg("failed to parse templates")
	}
	router.SetHTMLTemplate(tmpl)

	routes.SetupRoutes(router, routes.Deps{
		Controller:   controllers.NewController(accounts, sessions, requests, catalog, cfg.CookieSecure),
		Sessions:     sessions,
		DB:           sqlDB,
		LogFile:      config.LogFilePath(),
		SecureCookie: cfg.CookieSecure,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sessions.RunPurger(ctx, sessionPurgeInterval)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		l.Info().Str("addr", srv.Addr).Str("environment", cfg.Environment).Bool("permissive_workflow", workflow.Permissive()).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("shutdown failed")
		return
	}
	l.Info().Msg("shutdown complete")
}
