package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"furniture-editor/api/rest/routes"
	"furniture-editor/config"
	"furniture-editor/providers/gemini"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GeminiAPIKey == "" {
		log.Println("GEMINI_API_KEY is not set; image processing requests will fail")
	}

	// Built lazily on the first request, then shared
	geminiClient := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)

	r := routes.NewRouter(cfg, geminiClient)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Starting server on port %s (model %s)", cfg.ServerPort, geminiClient.Model())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("Server stopped with error: %v", err)
		os.Exit(1)
	}
	log.Println("Server exited")
}
