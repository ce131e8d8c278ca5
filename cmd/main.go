package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/irozhkov/library-server/internal/api/http/handler"
	"github.com/irozhkov/library-server/internal/api/http/middleware"
	"github.com/irozhkov/library-server/internal/api/http/router"
	"github.com/irozhkov/library-server/internal/config"
	"github.com/irozhkov/library-server/internal/logger"
	"github.com/irozhkov/library-server/internal/model"
	"github.com/irozhkov/library-server/internal/repository/postgres"
	"github.com/irozhkov/library-server/internal/server"
	"github.com/irozhkov/library-server/internal/service"
	"github.com/irozhkov/library-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	bookRepo := postgres.NewBookRepository(db)
	borrowingRepo := postgres.NewBorrowingRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret)

	authService := service.NewAuth(userRepo, tokenManager, logger)
	catalogService := service.NewCatalog(bookRepo, logger)
	lendingService := service.NewLending(borrowingRepo, bookRepo, logger)
	dashboardService := service.NewDashboard(bookRepo, borrowingRepo, logger)

	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(authService, logger),
		Book:      handler.NewBookHandler(catalogService, logger),
		Borrowing: handler.NewBorrowingHandler(lendingService, logger),
		Dashboard: handler.NewDashboardHandler(dashboardService, logger),
	}
	authenticate := middleware.NewAuthenticate(authService, logger)
	engine := router.New(handlers, authenticate, logger)

	httpServer := server.NewHTTPServer(engine, fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer

	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		err := s.Start(sl)
		if err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(httpServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
