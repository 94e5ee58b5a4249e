package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"food-rag-be/internal/bootstrap"
	"food-rag-be/internal/config"
	"food-rag-be/internal/pkg/logger"
	"food-rag-be/internal/server"
	"food-rag-be/internal/tracer"
	"food-rag-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer sysLogger.Sync()

	// 2. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer(cfg.Tracing, sysLogger)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, sysLogger, !cfg.IsProduction())
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg, sysLogger)
	if err != nil {
		log.Fatalf("Unable to bootstrap container: %v", err)
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Start Background Services
	go func() {
		if err := container.ConsumerService.Consume(ctx); err != nil {
			sysLogger.Error("Main", "Consumer service stopped", map[string]interface{}{"error": err.Error()})
		}
	}()
	if container.ChatEventLogService != nil {
		if err := container.ChatEventLogService.Start(ctx); err != nil {
			sysLogger.Warn("Main", "Chat event log disabled", map[string]interface{}{"error": err.Error()})
		}
	}

	// 6. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sysLogger.Error("Main", "Server shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// 7. Run Server
	if err := srv.Run(); err != nil {
		log.Fatal(err)
	}
}
