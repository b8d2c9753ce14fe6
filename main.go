package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"epidash/internal/config"
	"epidash/internal/container"
	"epidash/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}

	if err := appContainer.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	// A failed load still serves the empty dashboard
	if err := appContainer.LoadRecords(ctx); err != nil {
		log.Printf("Dataset unavailable, serving empty dashboard: %v", err)
	}

	server, err := ui.NewServer(ui.Deps{
		Dashboard: appContainer.Dashboard,
		Store:     appContainer.Store,
		Renderers: appContainer.Renderers,
		Metrics:   appContainer.Metrics,
		Logger:    appContainer.Logger,
	})
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down")
		appContainer.Shutdown(context.Background())
		os.Exit(0)
	}()

	log.Printf("Starting epidash server on port %s", appConfig.Server.Port)
	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
