/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the leave engine HTTP server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Build the zap logger (console in dev, JSON + rotation in prod)
  3. Initialize SQLite store
  4. Wire engine components (catalog, ledger, lifecycle)
  5. Optionally seed the default catalog for a tenant
  6. Start server with graceful shutdown

CONFIGURATION:
  Flags win over environment variables; .env fills the environment for
  local development.

  -port / PORT          HTTP server port (default: 8080)
  -db   / DATABASE_PATH SQLite database path (default: leave.db)
                        Use ":memory:" for in-memory database
  -env  / APP_ENV       "development" or "production" (default: development)
  -log  / LOG_PATH      Log file for production JSON logs (default: logs/leave.log)
  -seed / SEED_TENANT   Tenant ID to seed with the default catalog on boot

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/leave.db"

  # Run in-memory with a seeded demo tenant
  ./server -db=":memory:" -seed=acme

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/warp/leave-engine/api"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/sqlite"
)

func main() {
	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DATABASE_PATH", "leave.db"), "SQLite database path")
	env := flag.String("env", envStr("APP_ENV", "development"), "development or production")
	logPath := flag.String("log", envStr("LOG_PATH", "logs/leave.log"), "log file path (production)")
	seedTenant := flag.String("seed", envStr("SEED_TENANT", ""), "tenant ID to seed with the default catalog")
	flag.Parse()

	logger := newLogger(*env, *logPath)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	// Wire engine components
	catalog := leave.NewCatalog(store, logger)
	ledger := leave.NewBalanceLedger(store, logger)
	lifecycle := leave.NewLifecycle(store, store, logger)

	if *seedTenant != "" {
		types, err := catalog.Seed(context.Background(), leave.TenantID(*seedTenant))
		if err != nil {
			logger.Fatal("failed to seed catalog", zap.String("tenant", *seedTenant), zap.Error(err))
		}
		logger.Info("catalog seeded",
			zap.String("tenant", *seedTenant),
			zap.Int("types", len(types)))
	}

	// Create router
	handler := api.NewHandler(catalog, lifecycle, ledger, store, logger)
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			zap.Int("port", *port),
			zap.String("db", *dbPath),
			zap.String("env", *env))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// newLogger builds a console logger in development and a JSON logger with
// file rotation in production.
func newLogger(env, logPath string) *zap.Logger {
	if env != "production" {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err := cfg.Build()
		if err != nil {
			panic(err)
		}
		return logger
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	rotator := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    100, // megabytes
		MaxBackups: 7,
		MaxAge:     30, // days
		Compress:   true,
	}

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(rotator), zapcore.InfoLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(os.Stdout), zapcore.InfoLevel),
	)
	return zap.New(core, zap.AddCaller())
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return fallback
}
