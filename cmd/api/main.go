package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/reqdesk/backend/internal/auth"
	"github.com/example/reqdesk/backend/internal/config"
	"github.com/example/reqdesk/backend/internal/db"
	httpserver "github.com/example/reqdesk/backend/internal/http"
	"github.com/example/reqdesk/backend/internal/mq"
	"github.com/example/reqdesk/backend/internal/repository"
	"github.com/example/reqdesk/backend/internal/service"
	"github.com/example/reqdesk/backend/internal/storage"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	cfg := config.Load()

	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect database", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(database); err != nil {
		slog.Error("auto migrate", "error", err)
		os.Exit(1)
	}
	if err := db.SeedCategories(database); err != nil {
		slog.Error("seed categories", "error", err)
		os.Exit(1)
	}

	var publisher mq.Publisher
	rabbit, err := mq.NewRabbitPublisher(cfg.MQURL, cfg.MQRequestExchange)
	if err != nil {
		slog.Warn("rabbitmq unavailable, continuing without events", "error", err)
	} else {
		publisher = rabbit
	}

	var blobs storage.BlobStore
	if cfg.StorageBaseURL != "" {
		blobs = storage.NewBaaSStore(cfg.StorageBaseURL, cfg.StorageBucket, cfg.StorageToken)
	} else {
		disk, derr := storage.NewDiskStore(cfg.BlobDir)
		if derr != nil {
			slog.Error("init blob store", "error", derr)
			os.Exit(1)
		}
		blobs = disk
		slog.Info("using disk blob store", "dir", cfg.BlobDir)
	}

	requestRepo := repository.NewRequestRepository(database)
	attachmentRepo := repository.NewAttachmentRepository(database)
	commentRepo := repository.NewCommentRepository(database)
	categoryRepo := repository.NewCategoryRepository(database)
	userRepo := repository.NewUserRepository(database)

	attachmentSvc := service.NewAttachmentService(requestRepo, attachmentRepo, blobs, publisher)
	apiServer := httpserver.NewServer(httpserver.Deps{
		Requests:    requestRepo,
		Categories:  categoryRepo,
		Users:       userRepo,
		Lifecycle:   service.NewLifecycleService(requestRepo, publisher),
		Attachments: attachmentSvc,
		Comments:    service.NewCommentService(requestRepo, commentRepo, publisher),
		Creator:     service.NewRequestService(requestRepo, attachmentSvc, publisher),
		Stats:       service.NewStatisticsService(requestRepo),
		Verifier:    auth.NewVerifier(cfg.AuthJWTSecret),
		AuthClient:  auth.NewClient(cfg.AuthBaseURL),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:    cfg.HTTPPort,
		Handler: apiServer.Engine,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown initiated")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("server shutdown error", "error", err)
	}

	if rabbit != nil {
		_ = rabbit.Close()
	}
	slog.Info("bye")
}

func init() {
	if mode := os.Getenv("GIN_MODE"); mode == "" {
		gin.SetMode(gin.ReleaseMode)
	}
}
