package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pdf-study-aid/internal/config"
	"pdf-study-aid/internal/handler"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Wiring
	container, err := config.NewContainer(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer container.Close()

	server := &http.Server{
		Addr:              ":" + container.Config.GetServerPort(),
		Handler:           handler.NewRouter(container),
		ReadHeaderTimeout: 10 * time.Second,
		// Summaries can take as long as the provider timeout.
		WriteTimeout: container.Config.GetAITimeout() + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Run server
	errCh := make(chan error, 1)
	go func() {
		container.Logger.Info("Server listening",
			"address", server.Addr,
			"provider", container.Generator.Name(),
			"session_store", container.Config.GetSessionStore(),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			container.Logger.Error("Server failed to start", err)
			container.Close()
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	// Graceful shutdown
	container.Logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Graceful shutdown failed", err)
		_ = server.Close()
	}

	container.Logger.Info("Server exited")
}
