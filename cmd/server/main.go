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

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/rethinkmedia/backend/internal/ai"
	"github.com/rethinkmedia/backend/internal/config"
	"github.com/rethinkmedia/backend/internal/db"
	"github.com/rethinkmedia/backend/internal/dispatch"
	"github.com/rethinkmedia/backend/internal/httpapi"
	"github.com/rethinkmedia/backend/internal/httpapi/handlers"
	"github.com/rethinkmedia/backend/internal/logging"
	"github.com/rethinkmedia/backend/internal/media"
	"github.com/rethinkmedia/backend/internal/store/blob"
	"github.com/rethinkmedia/backend/internal/store/rabbitmq"
	"github.com/rethinkmedia/backend/internal/store/redisstore"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		logger.Fatal("database", "err", err)
	}

	ctx := context.Background()

	genaiClient, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		logger.Fatal("genai client", "err", err)
	}
	defer genaiClient.Close()

	blobs, err := blob.NewGCS(ctx, cfg.GCSBucket)
	if err != nil {
		logger.Fatal("blob store", "err", err)
	}
	defer blobs.Close()

	var cache *redisstore.Store
	if cfg.RedisAddr != "" {
		cache = redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		defer cache.Close()
	}

	text := ai.NewGeminiText(genaiClient, cfg.TextModel)
	fal := ai.NewFalClient(cfg.FalBaseURL, cfg.FalAPIKey)

	reg := ai.NewRegistry()
	reg.Register(ai.GeneratorImage, ai.NewImagenClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.ImageModel))
	reg.Register(ai.GeneratorVoice, ai.NewTTSClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.SpeechModel, cfg.SpeechVoice))
	reg.Register(ai.GeneratorVideo, &ai.VideoGenerator{Fal: fal, Model: cfg.VideoModel})
	reg.Register(ai.GeneratorJingle, &ai.JingleGenerator{Fal: fal, Model: cfg.JingleModel, Seconds: cfg.JingleLength})

	svc := media.NewService(media.NewRepo(gdb), reg, blobs, cache, logger)

	var disp dispatch.Dispatcher
	switch cfg.Dispatcher {
	case "queue":
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			logger.Fatal("rabbit publisher", "err", err)
		}
		disp = dispatch.NewQueue(pub)
	default:
		disp = dispatch.NewPool(svc, cfg.WorkerConcurrency, logger)
	}

	h := handlers.New(svc, text, disp, logger)
	router := httpapi.NewRouter(h, cfg, logger)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server started", "addr", cfg.HTTPAddr, "dispatcher", cfg.Dispatcher)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", "err", err)
		}
	}()

	<-runCtx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "err", err)
	}
	// let the in-process pool drain its in-flight generations
	if err := disp.Close(); err != nil {
		logger.Error("dispatcher close", "err", err)
	}
}
