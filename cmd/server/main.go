package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	httpadapter "github.com/errandly/errandly-backend/internal/adapter/http"
	redisadapter "github.com/errandly/errandly-backend/internal/adapter/redis"
	"github.com/errandly/errandly-backend/internal/adapter/repository/postgres"
	"github.com/errandly/errandly-backend/internal/usecase/acceptance"
	"github.com/errandly/errandly-backend/internal/usecase/bids"
	"github.com/errandly/errandly-backend/internal/usecase/chat"
	"github.com/errandly/errandly-backend/internal/usecase/notify"
	"github.com/errandly/errandly-backend/internal/usecase/settlement"
	"github.com/errandly/errandly-backend/internal/usecase/tasks"
)

const (
	defaultHTTPPort  = ":8080"
	defaultRateLimit = 20.0
	defaultBurst     = 40
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// 1. Setup Database
	dbConnStr := os.Getenv("DB_CONN_STR")
	if dbConnStr == "" {
		// If explicit string is missing, build it from individual vars (Docker friendly)
		host := os.Getenv("DB_HOST")
		if host == "" {
			host = "localhost" // Default for local run without docker
		}
		port := os.Getenv("DB_PORT")
		if port == "" {
			port = "5432"
		}
		user := os.Getenv("DB_USER")
		if user == "" {
			user = "postgres"
		}
		password := os.Getenv("DB_PASSWORD")
		if password == "" {
			password = "postgres"
		}
		dbname := os.Getenv("DB_NAME")
		if dbname == "" {
			dbname = "errandly"
		}

		dbConnStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host, port, user, password, dbname)
	}

	// Add 2-second delay to ensure Postgres is up (Simple retry)
	time.Sleep(2 * time.Second)

	db, err := postgres.NewDB(dbConnStr)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure schema", zap.Error(err))
	}
	logger.Info("Database schema ready")

	store := postgres.NewStore(db, 0)

	// 2. Optional redis delivery transport for notifications
	var publisher notify.Publisher
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		pub, err := redisadapter.NewPublisher(addr, os.Getenv("REDIS_PASSWORD"))
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer pub.Close()
		publisher = pub
		logger.Info("Redis notification transport enabled", zap.String("addr", addr))
	}

	// 3. Initialize Services (Use Cases)
	dispatcher := notify.NewDispatcher(store, publisher, logger)
	taskService := tasks.NewService(store)
	bidService := bids.NewService(store, dispatcher)
	coordinator := acceptance.NewCoordinator(store, dispatcher)
	engine := settlement.NewEngine(store, dispatcher, feeRate(logger))
	chatService := chat.NewService(store)

	// 4. Start HTTP Server
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpadapter.NewRateLimiter(rateLimit(), burst()).Middleware())
	httpadapter.SetupHandlers(router, taskService, bidService, coordinator, engine, chatService, dispatcher, logger)

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = defaultHTTPPort
	}
	srv := &http.Server{
		Addr:    port,
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to serve HTTP server", zap.Error(err))
		}
	}()

	waitForShutdown(srv, logger)
}

// feeRate reads FEE_RATE or falls back to the platform default
func feeRate(logger *zap.Logger) decimal.Decimal {
	raw := os.Getenv("FEE_RATE")
	if raw == "" {
		return settlement.DefaultFeeRate
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil || rate.IsNegative() {
		logger.Warn("Invalid FEE_RATE, using default", zap.String("fee_rate", raw))
		return settlement.DefaultFeeRate
	}
	return rate
}

func rateLimit() float64 {
	if raw := os.Getenv("RATE_LIMIT_RPS"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			return v
		}
	}
	return defaultRateLimit
}

func burst() int {
	if raw := os.Getenv("RATE_LIMIT_BURST"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return defaultBurst
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(srv *http.Server, logger *zap.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Info("Received signal, shutting down gracefully", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
	logger.Info("HTTP server stopped")
}
