package main

import (
	"context"
	"log"

	"github.com/courtmix/mixing-service/config"
	"github.com/courtmix/mixing-service/internal/feed"
	"github.com/courtmix/mixing-service/internal/handler"
	"github.com/courtmix/mixing-service/internal/middleware"
	"github.com/courtmix/mixing-service/internal/notify"
	"github.com/courtmix/mixing-service/internal/repository"
	"github.com/courtmix/mixing-service/internal/service"
	"github.com/courtmix/mixing-service/pkg/database"
	"github.com/courtmix/mixing-service/pkg/rabbitmq"
	"github.com/courtmix/mixing-service/pkg/redisclient"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	db := database.NewPostgresDB(cfg.DSN())

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		logger.Fatal("failed to connect to RabbitMQ", zap.Error(err))
	}
	defer publisher.Close()

	rdb, err := redisclient.New(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	eventRepo := repository.NewEventRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Collaborators
	dispatcher := notify.NewDispatcher(publisher, notificationRepo, logger)
	changeFeed := feed.NewPublisher(rdb, logger)

	// Services
	bookingSvc := service.NewBookingService(bookingRepo, eventRepo, dispatcher, changeFeed)
	eventSvc := service.NewEventService(eventRepo)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "mixing-service"})
	})

	api := e.Group("/api/v1", middleware.Auth(cfg.JWTSecret))
	handler.NewEventHandler(eventSvc, bookingSvc).RegisterRoutes(api)
	handler.NewBookingHandler(bookingSvc).RegisterRoutes(api)
	handler.NewNotificationHandler(notificationRepo).RegisterRoutes(api)

	logger.Info("mixing service starting", zap.String("port", cfg.ServerPort), zap.String("env", cfg.Env))
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
