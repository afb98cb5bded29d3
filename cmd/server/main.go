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

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/krishibondhu/krishi-ledger/internal/client"
	"github.com/krishibondhu/krishi-ledger/internal/config"
	"github.com/krishibondhu/krishi-ledger/internal/handler"
	"github.com/krishibondhu/krishi-ledger/internal/notify"
	"github.com/krishibondhu/krishi-ledger/internal/payment"
	"github.com/krishibondhu/krishi-ledger/internal/repository"
	"github.com/krishibondhu/krishi-ledger/internal/service"
	"github.com/krishibondhu/krishi-ledger/internal/storage"
	"github.com/krishibondhu/krishi-ledger/pkg/response"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	kv, db, redisClient, err := initStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	if db != nil {
		defer db.Close()
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	loanRepo := repository.NewLoanRepository(kv, time.Now)
	reminderStore := repository.NewReminderStore(kv)
	notifier := initNotifier(cfg)

	paymentCfg := payment.Config{
		SentinelPIN:     cfg.Payment.FailurePIN,
		ProcessingDelay: cfg.GetProcessingDelay(),
	}

	loanService := service.NewLoanService(loanRepo, reminderStore, notifier, paymentCfg)
	cropService := service.NewCropService(reminderStore, notifier)

	weatherClient := client.NewWeatherClient(cfg.Weather.BaseURL)
	assistantClient := initAssistant(cfg)

	loanHandler := handler.NewLoanHandler(loanService)
	assistantHandler := handler.NewAssistantHandler(assistantClient, weatherClient, cropService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	router := setupRoutes(loanHandler, assistantHandler, healthHandler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initStorage(cfg *config.Config) (storage.KVStore, *sqlx.DB, *redis.Client, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			return nil, nil, nil, err
		}
		store := storage.NewPostgresStore(db)
		if err := store.Migrate(context.Background()); err != nil {
			return nil, nil, nil, err
		}
		return store, db, nil, nil

	case config.DriverRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return storage.NewRedisStore(redisClient), nil, redisClient, nil

	default:
		log.Println("Using in-memory storage; state will not survive a restart")
		return storage.NewMemoryStore(), nil, nil, nil
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

func initAssistant(cfg *config.Config) *client.AssistantClient {
	if cfg.AI.APIKey == "" {
		log.Println("AI_API_KEY not set; assistant endpoints disabled")
		return nil
	}

	assistant, err := client.NewAssistantClient(context.Background(), cfg.AI.APIKey, cfg.AI.Model)
	if err != nil {
		log.Printf("Failed to initialize assistant client: %v", err)
		return nil
	}
	return assistant
}

func setupRoutes(loanHandler *handler.LoanHandler, assistantHandler *handler.AssistantHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)
	router.Use(response.CORSMiddleware)

	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/loans", loanHandler.ListLoans).Methods("GET")
	api.HandleFunc("/loans", loanHandler.CreateLoan).Methods("POST")
	api.HandleFunc("/loans/{loanId}", loanHandler.UpdateLoan).Methods("PUT")
	api.HandleFunc("/loans/{loanId}", loanHandler.DeleteLoan).Methods("DELETE")
	api.HandleFunc("/loans/{loanId}/status", loanHandler.ToggleStatus).Methods("POST")
	api.HandleFunc("/loans/{loanId}/payment", loanHandler.OpenPayment).Methods("POST")
	api.HandleFunc("/loans/{loanId}/reminder", loanHandler.RequestReminder).Methods("POST")

	api.HandleFunc("/payment", loanHandler.PaymentState).Methods("GET")
	api.HandleFunc("/payment/method", loanHandler.ChooseMethod).Methods("POST")
	api.HandleFunc("/payment/submit", loanHandler.SubmitPayment).Methods("POST")
	api.HandleFunc("/payment/retry", loanHandler.RetryPayment).Methods("POST")
	api.HandleFunc("/payment/close", loanHandler.ClosePayment).Methods("POST")

	api.HandleFunc("/reminders", loanHandler.ListReminders).Methods("GET")

	api.HandleFunc("/crops", assistantHandler.Crops).Methods("GET")
	api.HandleFunc("/crops/{cropId}/reminder", assistantHandler.FertilizerReminder).Methods("POST")
	api.HandleFunc("/weather", assistantHandler.Weather).Methods("GET")
	api.HandleFunc("/chat", assistantHandler.Chat).Methods("POST")
	api.HandleFunc("/scan", assistantHandler.Scan).Methods("POST")

	return router
}
