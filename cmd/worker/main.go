package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/rethinkmedia/backend/internal/ai"
	"github.com/rethinkmedia/backend/internal/config"
	"github.com/rethinkmedia/backend/internal/db"
	"github.com/rethinkmedia/backend/internal/logging"
	"github.com/rethinkmedia/backend/internal/media"
	"github.com/rethinkmedia/backend/internal/store/blob"
	"github.com/rethinkmedia/backend/internal/store/redisstore"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	logger = logger.With("component", "worker")

	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		logger.Fatal("database", "err", err)
	}

	ctx := context.Background()

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

	fal := ai.NewFalClient(cfg.FalBaseURL, cfg.FalAPIKey)
	reg := ai.NewRegistry()
	reg.Register(ai.GeneratorImage, ai.NewImagenClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.ImageModel))
	reg.Register(ai.GeneratorVoice, ai.NewTTSClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.SpeechModel, cfg.SpeechVoice))
	reg.Register(ai.GeneratorVideo, &ai.VideoGenerator{Fal: fal, Model: cfg.VideoModel})
	reg.Register(ai.GeneratorJingle, &ai.JingleGenerator{Fal: fal, Model: cfg.JingleModel, Seconds: cfg.JingleLength})

	svc := media.NewService(media.NewRepo(gdb), reg, blobs, cache, logger)

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		logger.Fatal("rabbit dial", "err", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("rabbit channel", "err", err)
	}
	defer ch.Close()

	// Declarations must match the publisher's exactly or rabbit refuses
	// the redeclare.
	dlq := cfg.RabbitQueue + ".dlq"
	if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		logger.Fatal("dlq declare", "err", err)
	}
	if _, err := ch.QueueDeclare(cfg.RabbitQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": dlq,
	}); err != nil {
		logger.Fatal("queue declare", "err", err)
	}

	concurrency := cfg.WorkerConcurrency
	if concurrency <= 0 {
		concurrency = 2
	}
	if err := ch.Qos(concurrency, 0, false); err != nil {
		logger.Fatal("qos", "err", err)
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.Fatal("consume", "err", err)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("worker started", "queue", cfg.RabbitQueue, "concurrency", concurrency)

	tasks := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range tasks {
				var t media.Task
				if err := json.Unmarshal(d.Body, &t); err != nil || t.ID == "" {
					logger.Error("bad task payload", "worker", workerID, "err", err)
					// malformed payloads go to the DLQ
					_ = d.Nack(false, false)
					continue
				}

				start := time.Now()
				if err := svc.Run(runCtx, t); err != nil {
					// the row is already marked failed; there is no retry,
					// regeneration is client-triggered
					logger.Error("generation task failed",
						"worker", workerID, "task_id", t.ID, "chat_id", t.ChatID,
						"type", t.Type, "index", t.Index,
						"cost", time.Since(start), "err", err)
				} else {
					logger.Info("generation task done",
						"worker", workerID, "task_id", t.ID, "chat_id", t.ChatID,
						"type", t.Type, "index", t.Index, "cost", time.Since(start))
				}

				if err := d.Ack(false); err != nil {
					logger.Error("ack failed", "worker", workerID, "task_id", t.ID, "err", err)
				}
			}
		}(i)
	}

	for {
		select {
		case <-runCtx.Done():
			logger.Info("worker shutting down")
			close(tasks)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				logger.Warn("delivery channel closed")
				time.Sleep(1 * time.Second)
				continue
			}
			tasks <- d
		}
	}
}
