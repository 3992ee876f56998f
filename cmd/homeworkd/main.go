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

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/EanHD/homework-app/internal/backup"
	"github.com/EanHD/homework-app/internal/database"
	"github.com/EanHD/homework-app/internal/logging"
	"github.com/EanHD/homework-app/internal/push"
	"github.com/EanHD/homework-app/internal/server"
)

func main() {
	// Optional .env for local development
	godotenv.Load()

	port := envOr("HOMEWORK_PORT", "8080")
	dbPath := envOr("HOMEWORK_DB_PATH", "homework.db")

	logger := logging.Setup(envOr("HOMEWORK_LOG_LEVEL", "info"), envOr("HOMEWORK_LOG_FORMAT", "text"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	pushCfg := push.Config{
		VAPIDPublicKey:  os.Getenv("HOMEWORK_VAPID_PUBLIC"),
		VAPIDPrivateKey: os.Getenv("HOMEWORK_VAPID_PRIVATE"),
		Subscriber:      os.Getenv("HOMEWORK_VAPID_SUBSCRIBER"),
	}
	if pushCfg.VAPIDPublicKey == "" || pushCfg.VAPIDPrivateKey == "" {
		pub, priv, err := push.GenerateVAPIDKeys()
		if err != nil {
			log.Fatalf("failed to generate VAPID keys: %v", err)
		}
		pushCfg.VAPIDPublicKey = pub
		pushCfg.VAPIDPrivateKey = priv
		logger.Warn("generated ephemeral VAPID keys; subscriptions will break on restart",
			"hint", "set HOMEWORK_VAPID_PUBLIC and HOMEWORK_VAPID_PRIVATE")
	}

	backupCfg := backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("HOMEWORK_S3_ENDPOINT"),
			Bucket:    os.Getenv("HOMEWORK_S3_BUCKET"),
			Region:    envOr("HOMEWORK_S3_REGION", "auto"),
			AccessKey: os.Getenv("HOMEWORK_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("HOMEWORK_S3_SECRET_KEY"),
			Prefix:    envOr("HOMEWORK_S3_PREFIX", "homework"),
		},
		Passphrase:    os.Getenv("HOMEWORK_BACKUP_PASSPHRASE"),
		RetentionDays: envInt("HOMEWORK_BACKUP_RETENTION_DAYS", 30),
	}

	cfg := server.Config{
		BaseURL:      envOr("HOMEWORK_BASE_URL", "http://localhost:"+port),
		JWTSecret:    os.Getenv("HOMEWORK_JWT_SECRET"),
		GatewayToken: os.Getenv("HOMEWORK_GATEWAY_TOKEN"),
		Push:         pushCfg,
		Backup:       backupCfg,
	}

	srv := server.New(db, cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv.Scheduler().Start(ctx)
	defer srv.Scheduler().Stop()

	srv.BackupManager().Start(ctx)
	defer srv.BackupManager().Stop()

	// The delivery sweep runs every minute; rate limiter buckets are
	// trimmed hourly.
	c := cron.New()
	if _, err := c.AddFunc("* * * * *", func() {
		summary, err := srv.Sweep().Run()
		if err != nil {
			logger.Error("delivery sweep failed", "error", err)
			return
		}
		if summary.Processed > 0 {
			logger.Info("delivery sweep",
				"processed", summary.Processed,
				"successes", summary.Successes,
				"pruned", summary.Pruned,
				"errors", summary.Errors)
		}
	}); err != nil {
		log.Fatalf("register sweep job: %v", err)
	}
	if _, err := c.AddFunc("@hourly", srv.RateLimiter().Cleanup); err != nil {
		log.Fatalf("register rate limiter cleanup job: %v", err)
	}
	c.Start()
	defer c.Stop()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("homeworkd running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	fmt.Println("\nShutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
