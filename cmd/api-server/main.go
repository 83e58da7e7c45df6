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

	"recipehub/database"
	"recipehub/internal/config"
	"recipehub/internal/email"
	"recipehub/internal/events"
	"recipehub/internal/logger"
	"recipehub/internal/microservices/http-api/handler"
	"recipehub/internal/microservices/http-api/middleware"
	"recipehub/internal/microservices/http-api/repository"
	"recipehub/internal/microservices/http-api/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)

	if err := run(cfg, zapLogger); err != nil {
		zapLogger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zapLogger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores
	db, err := database.ConnectDB(cfg, zapLogger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer database.Close(db)

	redisClient, err := repository.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	// Collaborators
	mailer := email.NewSender(cfg, zapLogger)
	publisher := events.NewPublisher(cfg, zapLogger)
	defer publisher.Close()

	// Repositories
	tx := repository.NewTxManager(db)
	userRepo := repository.NewUserRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	codeStore := repository.NewRedisCodeStore(redisClient)

	// Services
	emitter := service.NewNotificationEmitter(notificationRepo, publisher, zapLogger)
	// runs before publisher.Close
	defer emitter.Wait()
	authService := service.NewAuthService(tx, userRepo, refreshTokenRepo, codeStore, mailer, cfg, zapLogger)
	moderationService := service.NewModerationService(tx, userRepo, recipeRepo, commentRepo, categoryRepo, notificationRepo, emitter)
	queryService := service.NewRecipeQueryService(userRepo, recipeRepo, commentRepo, categoryRepo)
	recipeService := service.NewRecipeService(tx, userRepo, recipeRepo, commentRepo, notificationRepo)
	categoryService := service.NewCategoryService(tx, categoryRepo, userRepo, recipeRepo, commentRepo, notificationRepo)
	userService := service.NewUserService(userRepo, recipeRepo, refreshTokenRepo)
	notificationService := service.NewNotificationService(notificationRepo)

	// HTTP
	if err := middleware.RegisterValidators(); err != nil {
		return err
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst, zapLogger)
	go limiter.Run(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(zapLogger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handler.RegisterRoutes(r, handler.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Recipes:       handler.NewRecipeHandler(queryService, recipeService, moderationService),
		Comments:      handler.NewCommentHandler(moderationService),
		Categories:    handler.NewCategoryHandler(categoryService),
		Notifications: handler.NewNotificationHandler(notificationService),
		Users:         handler.NewUserHandler(userService),
		Admin:         handler.NewAdminHandler(moderationService, queryService, userService),
	}, middleware.AuthMiddleware(authService), limiter.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		zapLogger.Info("http server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.GoEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		zapLogger.Info("received shutdown signal")
	case err := <-errChan:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	zapLogger.Info("server stopped gracefully")
	return nil
}
