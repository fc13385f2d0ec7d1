package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	database "github.com/sebuszqo/MyFiance/db"
	"github.com/sebuszqo/MyFiance/internal/auth"
	"github.com/sebuszqo/MyFiance/internal/config"
	"github.com/sebuszqo/MyFiance/internal/demo"
	"github.com/sebuszqo/MyFiance/internal/finance/application"
	"github.com/sebuszqo/MyFiance/internal/finance/domain"
	"github.com/sebuszqo/MyFiance/internal/finance/infrastructure"
	"github.com/sebuszqo/MyFiance/internal/finance/interfaces"
	"github.com/sebuszqo/MyFiance/internal/password"
	"github.com/sebuszqo/MyFiance/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Missing configuration, update to start server: %v", err)
	}

	dbService, err := database.NewDBService(cfg.DBConnectionString)
	if err != nil {
		log.Fatalf("Could not initialize database: %v", err)
	}
	defer dbService.Close()

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := dbService.Migrate(startupCtx); err != nil {
		log.Fatalf("Could not migrate database: %v", err)
	}
	if _, err := dbService.SeedCategories(startupCtx, domain.DefaultCategories); err != nil {
		log.Fatalf("Could not seed categories: %v", err)
	}
	cancel()

	hasher := password.NewBcrypt(cfg.BcryptCost)
	jwtManager, err := auth.NewJWTManager(cfg.JWTSecret)
	if err != nil {
		log.Fatalf("Could not initialize token service: %v", err)
	}

	userRepo := user.NewUserRepository(dbService.DB)
	userService := user.NewUserService(userRepo, hasher)
	userHandler := user.NewHandler(userService)

	transactionRepo := infrastructure.NewTransactionRepository(dbService.DB)
	categoryRepo := infrastructure.NewCategoryRepository(dbService.DB)
	categoryService := application.NewCategoryService(categoryRepo)
	transactionService := application.NewTransactionService(transactionRepo, categoryService)
	transactionHandler := interfaces.NewTransactionHandler(transactionService, interfaces.RespondJSON, interfaces.RespondError)
	categoryHandler := interfaces.NewCategoryHandler(categoryService, interfaces.RespondJSON, interfaces.RespondError)

	demoAccount := demo.NewAccount(cfg.Demo.Email, cfg.Demo.Password, userService, transactionRepo)
	authService := auth.NewAuthService(userService, jwtManager, hasher, cfg.AccessTokenTTL, demoAccount)
	authHandler := auth.NewHandler(authService)

	if cfg.Demo.ResetSchedule != "" {
		scheduler, err := demo.StartResetScheduler(demoAccount, cfg.Demo.ResetSchedule)
		if err != nil {
			log.Fatalf("Scheduler didn't start, stopping the app ...: %v", err)
		}
		defer scheduler.Stop()
		log.Printf("Demo reset scheduled: %s", cfg.Demo.ResetSchedule)
	}

	server := NewServer(authHandler, authService, userHandler, transactionHandler, categoryHandler, dbService, cfg.CORSAllowedOrigins)
	server.RegisterRoutes()

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server starting on %s...", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}
