package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/EanHD/homework-app/internal/auth"
	"github.com/EanHD/homework-app/internal/backup"
	"github.com/EanHD/homework-app/internal/handler"
	"github.com/EanHD/homework-app/internal/middleware"
	"github.com/EanHD/homework-app/internal/push"
	"github.com/EanHD/homework-app/internal/reminder"
	"github.com/EanHD/homework-app/internal/store"
	ws "github.com/EanHD/homework-app/internal/websocket"
)

// Config holds everything the server needs beyond the open database handle.
type Config struct {
	// BaseURL is where this server reaches its own notification endpoint;
	// the remote schedule gateway posts there.
	BaseURL      string
	JWTSecret    string
	GatewayToken string
	Push         push.Config
	Backup       backup.Config
}

type Server struct {
	db  *sql.DB
	hub *ws.Hub

	classH        *handler.ClassHandler
	assignmentH   *handler.AssignmentHandler
	notificationH *handler.NotificationHandler
	subscriptionH *handler.SubscriptionHandler
	settingsH     *handler.SettingsHandler
	backupH       *handler.BackupHandler

	verifier      *auth.Verifier
	rateLimiter   *middleware.RateLimiter
	scheduler     *reminder.Scheduler
	gateway       *reminder.Gateway
	sweep         *push.Sweep
	backupManager *backup.Manager
	logger        *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	classStore := store.NewClassStore(db)
	assignmentStore := store.NewAssignmentStore(db)
	settingsStore := store.NewSettingsStore(db)
	notificationStore := store.NewNotificationStore(db)
	subscriptionStore := store.NewSubscriptionStore(db)

	notifier := ws.NewReminderNotifier(hub)
	scheduler := reminder.NewScheduler(assignmentStore, settingsStore, notifier, logger.With("component", "scheduler"))
	gateway := reminder.NewGateway(cfg.BaseURL+"/api/notifications", cfg.GatewayToken, settingsStore, logger.With("component", "gateway"))

	pushSvc := push.NewService(cfg.Push)
	sweep := push.NewSweep(notificationStore, subscriptionStore, pushSvc, logger.With("component", "sweep"))

	backupSvc := backup.NewService(classStore, assignmentStore, settingsStore)
	backupMgr := backup.NewManager(cfg.Backup, backupSvc, logger)

	verifier := auth.NewVerifier(cfg.JWTSecret)

	return &Server{
		db:            db,
		hub:           hub,
		classH:        handler.NewClassHandler(classStore, hub),
		assignmentH:   handler.NewAssignmentHandler(assignmentStore, classStore, hub, scheduler, gateway, logger.With("component", "assignment")),
		notificationH: handler.NewNotificationHandler(notificationStore, sweep, logger.With("component", "notification")),
		subscriptionH: handler.NewSubscriptionHandler(subscriptionStore, pushSvc, logger.With("component", "subscription")),
		settingsH:     handler.NewSettingsHandler(settingsStore, hub, scheduler),
		backupH:       handler.NewBackupHandler(backupSvc, backupMgr, hub, scheduler, logger.With("component", "backup")),
		verifier:      verifier,
		rateLimiter:   middleware.NewRateLimiter(),
		scheduler:     scheduler,
		gateway:       gateway,
		sweep:         sweep,
		backupManager: backupMgr,
		logger:        logger,
	}
}

// Scheduler returns the in-process reminder scheduler for lifecycle wiring.
func (s *Server) Scheduler() *reminder.Scheduler {
	return s.scheduler
}

// Sweep returns the delivery sweep for timer wiring.
func (s *Server) Sweep() *push.Sweep {
	return s.sweep
}

// BackupManager returns the scheduled backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Assignment API routes
	mux.HandleFunc("GET /api/assignments", s.assignmentH.List)
	mux.HandleFunc("POST /api/assignments", s.assignmentH.Create)
	mux.HandleFunc("GET /api/assignments/{id}", s.assignmentH.Get)
	mux.HandleFunc("PUT /api/assignments/{id}", s.assignmentH.Update)
	mux.HandleFunc("DELETE /api/assignments/{id}", s.assignmentH.Delete)
	mux.HandleFunc("POST /api/assignments/{id}/complete", s.assignmentH.SetCompleted)

	// Class API routes
	mux.HandleFunc("GET /api/classes", s.classH.List)
	mux.HandleFunc("POST /api/classes", s.classH.Create)
	mux.HandleFunc("PUT /api/classes/{id}", s.classH.Update)
	mux.HandleFunc("DELETE /api/classes/{id}", s.classH.Delete)

	// Settings API routes
	mux.HandleFunc("GET /api/settings", s.settingsH.Get)
	mux.HandleFunc("PUT /api/settings", s.settingsH.Update)

	// Notification ingestion + sweep; rate limited since these face the
	// open internet when the PWA is deployed remotely
	mux.HandleFunc("POST /api/notifications", s.rateLimitedHandler(s.notificationH.Schedule))
	mux.HandleFunc("POST /api/notifications/sweep", s.notificationH.RunSweep)

	// Subscription registry
	mux.HandleFunc("POST /api/subscriptions", s.rateLimitedHandler(s.subscriptionH.Subscribe))
	mux.HandleFunc("DELETE /api/subscriptions", s.rateLimitedHandler(s.subscriptionH.Unsubscribe))
	mux.HandleFunc("GET /api/subscriptions/vapid-key", s.subscriptionH.VAPIDKey)

	// Backup API routes
	mux.HandleFunc("GET /api/backup/export", s.backupH.Export)
	mux.HandleFunc("POST /api/backup/import", s.backupH.Import)
	mux.HandleFunc("GET /api/backup/status", s.backupH.Status)
	mux.HandleFunc("POST /api/backup/run", s.backupH.RunNow)
	mux.HandleFunc("POST /api/backup/restore", s.backupH.Restore)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	identity := middleware.Identity(s.verifier, s.logger.With("component", "auth"))
	return middleware.RequestLogger(s.logger.With("component", "http"))(identity(mux))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 60, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
