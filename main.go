package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/HSouheill/indique_backend/config"
	"github.com/HSouheill/indique_backend/controllers"
	"github.com/HSouheill/indique_backend/metrics"
	"github.com/HSouheill/indique_backend/middleware"
	"github.com/HSouheill/indique_backend/repositories"
	"github.com/HSouheill/indique_backend/routes"
	"github.com/HSouheill/indique_backend/services"
	"github.com/HSouheill/indique_backend/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Initialize Firebase
	app, err := config.InitFirebase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return fmt.Errorf("firebase auth client: %w", err)
	}
	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("firebase messaging client: %w", err)
	}

	store, err := openStore(ctx, cfg, app, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	redisClient := config.ConnectRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	guard := repositories.NewEventGuard(redisClient, cfg.EventTTL)

	m := metrics.New(logger, prometheus.DefaultRegisterer)

	// Create WebSocket hub
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	// Initialize repositories and services
	users := repositories.NewUserRepository(store)
	feed := services.NewStatusFeedService(store, logger, m, time.Now)
	commissions := services.NewCommissionService(store, logger, m, time.Now, loc)
	propagation := services.NewPropagationService(store, logger, m, time.Now)
	indications := services.NewIndicationService(store, users, logger, time.Now)

	channels := []services.Channel{
		services.NewInAppChannel(store, hub, logger),
		services.NewPushChannel(messagingClient, logger),
		services.NewWebhookChannel(nil, cfg.WebhookURL),
	}
	if cfg.SMTPHost != "" {
		dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
		channels = append(channels, services.NewEmailChannel(dialer, cfg.SMTPUser))
	}
	dispatcher := services.NewDispatcher(logger, m, channels...)
	notifications := services.NewNotificationService(users, dispatcher, logger, time.Now)

	// Create a new Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = controllers.NewValidator()

	rateLimiter := middleware.NewRateLimiter()
	go rateLimiter.Cleanup(ctx, time.Hour)

	// Middleware
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.GlobalCORS(cfg.AllowedOrigins))
	e.Use(middleware.SecurityHeaders())
	e.Use(rateLimiter.RateLimit())
	e.Use(httpsRedirect())

	routes.SetupRoutes(e, routes.Controllers{
		Status:       controllers.NewStatusController(feed, logger),
		Commission:   controllers.NewCommissionController(commissions, logger),
		Indication:   controllers.NewIndicationController(indications, logger),
		Notification: controllers.NewNotificationController(users, hub, cfg.AllowedOrigins, logger),
		Trigger:      controllers.NewTriggerController(propagation, notifications, guard, m, logger),
	}, middleware.FirebaseAuth(authClient, logger), middleware.TriggerAuth(cfg.TriggerSecret, logger), m)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
	if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, app *firebase.App, logger *zap.Logger) (repositories.DocumentStore, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := config.ConnectDB(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return repositories.NewMongoStore(client, cfg.DBName, logger), nil
	default:
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("firestore client: %w", err)
		}
		return repositories.NewFirestoreStore(client, logger), nil
	}
}

func httpsRedirect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("X-Forwarded-Proto") == "http" {
				return c.Redirect(http.StatusMovedPermanently, "https://"+c.Request().Host+c.Request().RequestURI)
			}
			return next(c)
		}
	}
}
