package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/genai"

	"github.com/TerrellBlash/solace-vite/internal/chat"
	"github.com/TerrellBlash/solace-vite/internal/config"
	"github.com/TerrellBlash/solace-vite/internal/httpserver"
	"github.com/TerrellBlash/solace-vite/internal/mediagen"
	"github.com/TerrellBlash/solace-vite/internal/speech"
	"github.com/TerrellBlash/solace-vite/internal/storage"
	"github.com/TerrellBlash/solace-vite/internal/transcribe"
)

func main() {
	// Include sub-second precision in all log timestamps
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cfg := config.Load()

	store := buildStore(cfg)
	deps := buildDeps(cfg, store)

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           httpserver.New(deps),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s", cfg.HTTPAddress)
		serverErrors <- server.ListenAndServe()
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-sigChan:
		log.Printf("shutdown signal received: %v", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = server.Close()
	}
}

func buildStore(cfg config.Config) storage.Store {
	if cfg.SupabaseURL != "" && cfg.SupabaseServiceKey != "" {
		st, err := storage.NewSupabase(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseBucket)
		if err != nil {
			log.Fatalf("supabase storage: %v", err)
		}
		log.Printf("storage: supabase bucket %q", cfg.SupabaseBucket)
		return st
	}
	st, err := storage.NewLocal(cfg.MediaDir)
	if err != nil {
		log.Fatalf("local storage: %v", err)
	}
	log.Printf("storage: local dir %q", cfg.MediaDir)
	return st
}

func buildDeps(cfg config.Config, store storage.Store) httpserver.Deps {
	deps := httpserver.Deps{MediaDir: cfg.MediaDir}
	if cfg.SupabaseURL != "" && cfg.SupabaseServiceKey != "" {
		// Remote storage serves its own public URLs
		deps.MediaDir = ""
	}

	if cfg.GeminiAPIKey == "" {
		log.Println("running with offline stub providers")
		deps.Streamer = chat.Stub{}
		deps.Transcriber = transcribe.Stub{}
		deps.Synthesizer = speech.Stub{}
		deps.Media = mediagen.NewStub(store)
		return deps
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatalf("genai client: %v", err)
	}

	deps.Streamer = chat.NewGemini(client, cfg.GeminiFastModel, cfg.GeminiDeepModel)
	deps.Transcriber = transcribe.NewGemini(client)
	deps.Synthesizer = speech.NewGemini(client)
	if cfg.DeepgramAPIKey != "" {
		log.Println("speech: using deepgram synthesizer")
		deps.Synthesizer = speech.NewDeepgram(cfg.DeepgramAPIKey, cfg.DeepgramTTSModel)
	}

	opts := []mediagen.Option{
		mediagen.WithPollInterval(time.Duration(cfg.AnimatePollSeconds) * time.Second),
	}
	if cfg.AnimateMaxPolls > 0 {
		opts = append(opts, mediagen.WithMaxPolls(cfg.AnimateMaxPolls))
	}
	deps.Media = mediagen.New(client, cfg.GeminiAPIKey, store, opts...)
	return deps
}
