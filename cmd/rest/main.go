package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bookreview-be/internal/bootstrap"
	"bookreview-be/internal/config"
	"bookreview-be/internal/server"
	"bookreview-be/internal/tracer"
	"bookreview-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	var gormDB *gorm.DB
	if cfg.Database.Driver != "memory" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment != "production")
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Background services
	go container.WebSocketHub.Run(ctx)
	container.NotificationService.Start()
	if container.ConsumerService != nil {
		if err := container.ConsumerService.Consume(ctx); err != nil {
			log.Printf("Email outbox consumer error: %v", err)
		}
	}

	srv := server.New(cfg, container)
	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
