package main

import (
	"context"
	"go-contact-backend/config"
	_ "go-contact-backend/docs" // Important for Swagger
	v1 "go-contact-backend/internal/delivery/http/v1"
	"go-contact-backend/internal/usecase"
	"go-contact-backend/pkg/email"
	"go-contact-backend/pkg/logger"
	"go-contact-backend/pkg/upload"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// @title           Contact Form Backend API
// @version         1.0
// @description     Relays contact form submissions, with an optional attachment, by email.
// @host            localhost:8080
// @BasePath        /
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting contact backend", "port", cfg.Port)

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// 3. Setup Upload Directory
	uploads := upload.NewStore(cfg.UploadDir, cfg.UploadMaxBytes)
	if err := uploads.EnsureDir(); err != nil {
		logger.Log.Error("Failed to prepare upload directory", "error", err)
		os.Exit(1)
	}

	// 4. Setup Email Service
	emailService := email.NewEmailService(cfg)
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - submissions will fail to send")
	}

	// 5. Setup UseCases
	validate := validator.New()
	contactUC := usecase.NewContactUsecase(emailService, uploads, validate, usecase.ContactSettings{
		SenderName:    cfg.MailSenderName,
		SenderAddress: cfg.SMTPUsername,
		Recipient:     cfg.MailReceiver,
		Subject:       cfg.MailSubject,
		EscapeHTML:    cfg.MailEscapeHTML,
	})

	healthUC := usecase.NewHealthUsecase(uploads.Dir(), emailService.IsConfigured())

	// 6. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ContactUC: contactUC,
		HealthUC:  healthUC,
		Uploads:   uploads,
		Config:    cfg,
	})

	// 7. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server is running", "addr", srv.Addr, "upload_dir", uploads.Dir())
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

	// in-flight sends may take up to SMTP_TIMEOUT
	ctx, cancel := context.WithTimeout(context.Background(), cfg.SMTPTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
