package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dbadvisor.io/chat-gateway/internal/api"
	"dbadvisor.io/chat-gateway/internal/config"
	"dbadvisor.io/chat-gateway/internal/core"
	"dbadvisor.io/chat-gateway/internal/telemetry"
)

var version = "dev"

func main() {
	// Load configuration; a missing API key stops the process here
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup logging
	_, logFile, err := telemetry.InitLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logFile.Close()

	shutdownTelemetry, err := telemetry.InitTelemetry(context.Background(), cfg.LogDir, version)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer shutdownTelemetry()

	// Initialize the completion backend once; every request shares it
	llm, err := core.NewCompleter(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize %s completion client: %v", cfg.Provider, err)
	}
	defer core.CloseCompleter(llm)

	chatService := core.NewChatService(llm, cfg.ProviderTimeout)

	apiHandler := api.NewAPIHandler(chatService, cfg.MaxUploadBytes)
	router := api.NewRouter(apiHandler, cfg.FrontendOrigin)

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.ProviderTimeout + 30*time.Second, // provider calls dominate response time
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting server",
			"addr", serverAddr,
			"provider", cfg.Provider,
			"model", cfg.Model,
			"frontend_origin", cfg.FrontendOrigin,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	// Give in-flight provider calls time to finish
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		return
	}

	slog.Info("server exiting gracefully")
}
