package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"classmark/internal/config"
	"classmark/internal/queue"
	"classmark/internal/session"
	"classmark/internal/store"
)

// Worker consumes check-in messages and repairs student summaries that
// are missing their teacher-roster counterpart. Check-in writes are
// transactional, so repairs only fire after out-of-band damage (partial
// restores, manual edits) — the worker is cheap verification.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "classmark:reconcile")
	}

	svc := session.NewService(store.NewPostgres(db.Client), nil,
		session.LinkBuilder{ClientURL: cfg.ClientURL}, cfg.UploadTimeout)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("reconcile worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != queue.TypeCheckIn {
			continue
		}
		c, err := queue.DecodeCheckIn(msg)
		if err != nil {
			log.Printf("bad message: %v", err)
			continue
		}
		if err := svc.ReconcileSummary(ctx, c.TeacherEmail, c.SessionID, c.StudentEmail); err != nil {
			log.Printf("reconcile %s/%s for %s failed: %v", c.TeacherEmail, c.SessionID, c.StudentEmail, err)
			continue
		}
		log.Printf("reconciled %s/%s for %s", c.TeacherEmail, c.SessionID, c.StudentEmail)
	}

	log.Println("worker stopped")
}
