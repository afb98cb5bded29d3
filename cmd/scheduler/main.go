// The scheduler binary runs the periodic due-reminder check: once at
// startup, then on the configured cron spec (every minute by default),
// mirroring the mobile client's on-load check plus 60-second poll.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/krishibondhu/krishi-ledger/internal/config"
	"github.com/krishibondhu/krishi-ledger/internal/notify"
	"github.com/krishibondhu/krishi-ledger/internal/repository"
	"github.com/krishibondhu/krishi-ledger/internal/service"
	"github.com/krishibondhu/krishi-ledger/internal/storage"
)

func main() {
	_ = godotenv.Load()

	log.Println("Starting reminder scheduler...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	kv, cleanup, err := initStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer cleanup()

	reminderStore := repository.NewReminderStore(kv)
	notifier := initNotifier(cfg)
	checker := service.NewReminderChecker(reminderStore, notifier, time.Now)

	runCheck(checker)

	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(cfg.Reminder.CheckSpec, func() { runCheck(checker) }); err != nil {
		log.Fatalf("Failed to schedule reminder check: %v", err)
	}

	c.Start()
	log.Println("Scheduler started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

func runCheck(checker *service.ReminderChecker) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := checker.RunOnce(ctx)
	if err != nil {
		log.Printf("Reminder check failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("Notified %d due reminder(s)", count)
	}
}

func initStorage(cfg *config.Config) (storage.KVStore, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		store := storage.NewPostgresStore(db)
		if err := store.Migrate(context.Background()); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil

	case config.DriverRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return storage.NewRedisStore(redisClient), func() { redisClient.Close() }, nil

	default:
		log.Println("Using in-memory storage; the scheduler will see no persisted reminders")
		return storage.NewMemoryStore(), func() {}, nil
	}
}

func initNotifier(cfg *config.Config) notify.Notifier {
	if cfg.SMTP.Host != "" {
		return notify.NewEmailNotifier(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Username,
			cfg.SMTP.Password,
			cfg.SMTP.From,
			cfg.SMTP.To,
		)
	}
	return notify.NewLogNotifier(cfg.Reminder.NotificationsEnabled)
}
