package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/config"
	_ "github.com/ShubhamMeena07/shubhammeenaportfolio-backend/docs" // Important for Swagger
	v1 "github.com/ShubhamMeena07/shubhammeenaportfolio-backend/internal/delivery/http/v1"
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/internal/usecase"
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/pkg/email"
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/pkg/logger"
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/pkg/security"
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

// @title           Portfolio Contact API
// @version         1.0
// @description     Contact form backend for the portfolio site.
// @host            localhost:8080
// @BasePath        /v1
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	// 2. Setup Loggers
	logger.Init(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	logger.Log.Info("Starting portfolio contact backend", "port", cfg.Port)

	audit := security.InitSecurityLogger("portfolio-contact-backend", environment(cfg.GinMode))
	defer func() { _ = audit.Sync() }()

	// 3. Setup Email Providers
	primary := newPrimaryProvider(cfg)
	secondary := email.NewSMTPProvider(email.SMTPConfig{
		Host:               cfg.SMTPHost,
		Port:               cfg.SMTPPort,
		Username:           cfg.MailUser,
		Password:           cfg.MailPass,
		InsecureSkipVerify: cfg.SMTPInsecureSkipVerify,
		Timeout:            cfg.EmailTimeout,
	})
	logger.Log.Info("Email providers",
		"primary", primary.Name(),
		"primary_configured", primary.Configured(),
		"secondary", secondary.Name(),
		"secondary_configured", secondary.Configured(),
		"recipient", cfg.RecipientEmail(),
	)

	// 4. Setup UseCases
	contactUC := usecase.NewContactUsecase(primary, secondary, usecase.ContactOptions{
		Recipient:       cfg.RecipientEmail(),
		FallbackContact: cfg.FallbackContactEmail,
		Owner: email.Owner{
			Name:         cfg.OwnerName,
			Title:        cfg.OwnerTitle,
			Phone:        cfg.OwnerPhone,
			PortfolioURL: cfg.PortfolioURL,
		},
		Timeout: cfg.EmailTimeout,
	}, validation.New(), audit)
	healthUC := usecase.NewHealthUsecase(primary, secondary)

	// 5. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ContactUC: contactUC,
		HealthUC:  healthUC,
		Audit:     audit,
		Config:    cfg,
	})

	// 6. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// In-flight submissions may be waiting on a provider.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.EmailTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

// newPrimaryProvider picks SendGrid or SES. An SES setup failure leaves an
// unconfigured provider so SMTP can still carry the traffic.
func newPrimaryProvider(cfg *config.Config) email.Provider {
	if cfg.EmailPrimaryProvider != "ses" {
		return email.NewSendGridProvider(email.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			Host:      cfg.SendGridHost,
		})
	}

	if !cfg.PrimaryConfigured() {
		return email.NewSESProvider(nil, cfg.SESFromEmail)
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.EmailTimeout)
	defer cancel()
	provider, err := email.NewSESProviderFromRegion(ctx, cfg.AWSRegion, cfg.SESFromEmail)
	if err != nil {
		logger.Log.Error("Failed to set up SES, primary disabled", "error", err)
		return email.NewSESProvider(nil, cfg.SESFromEmail)
	}
	return provider
}

func environment(ginMode string) string {
	if ginMode == gin.ReleaseMode {
		return "production"
	}
	return "development"
}
