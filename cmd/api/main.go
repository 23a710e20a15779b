package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voicedesk/internal/assistant"
	"voicedesk/internal/audit"
	"voicedesk/internal/auth"
	"voicedesk/internal/calllog"
	"voicedesk/internal/config"
	"voicedesk/internal/httpapi"
	"voicedesk/internal/payment"
	"voicedesk/internal/phone"
	"voicedesk/internal/plan"
	"voicedesk/internal/realtime"
	"voicedesk/internal/reporting"
	"voicedesk/internal/subscription"
	"voicedesk/internal/users"
	"voicedesk/internal/voiceplatform"
	"voicedesk/pkg/logger"
	"voicedesk/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Local development convenience; real deployments inject env directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Outbound clients.
	platform := voiceplatform.NewClient(cfg.Voice)
	gateway := payment.NewClient(cfg.Payment)

	// Services, memory-free: every repo is backed by Postgres, pending
	// signups by Redis.
	planSvc := plan.NewService(plan.NewPostgresRepo(db))
	assistantSvc := assistant.NewService(assistant.NewPostgresRepo(db), platform)
	phoneSvc := phone.NewService(phone.NewPostgresRepo(db), platform)
	auditSvc := audit.NewService(audit.NewPostgresRepo(db), log)

	pending := users.NewPendingRedisStore(rdb, cfg.App.PendingSignupTTL)
	userSvc := users.NewService(users.NewPostgresRepo(db), pending, planSvc, gateway, authManager)
	subSvc := subscription.NewService(subscription.NewPostgresRepo(db), planSvc, userSvc, auditSvc)
	userSvc.SetSubscriptions(subSvc)

	callRepo := calllog.NewPostgresRepo(db)
	hub := realtime.NewHub(log)
	reconciler := calllog.NewReconciler(callRepo, assistantSvc, hub)
	reportSvc := reporting.NewService(callRepo)

	h := httpapi.Handlers{
		Users:              userSvc,
		Assistants:         assistantSvc,
		Phones:             phoneSvc,
		Plans:              planSvc,
		Subscriptions:      subSvc,
		CallLogs:           callRepo,
		Reports:            reportSvc,
		Platform:           platform,
		Gateway:            gateway,
		Audit:              auditSvc,
		Redis:              rdb,
		MaxConcurrentCalls: cfg.App.MaxConcurrentCalls,
	}

	webhook := voiceplatform.WebhookHandler{
		Reconciler: reconciler,
		Secret:     cfg.Voice.WebhookSecret,
		OnCallEnded: func(ctx context.Context, orgID string) {
			if err := utils.ReleaseCallSlot(ctx, rdb, httpapi.CallSlotKey(orgID)); err != nil {
				log.Error("call slot release failed", "org_id", orgID, "err", err)
			}
		},
	}

	ws := realtime.NewHandler(hub, authManager)

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, webhook, ws, auth.RequireAccessToken(authManager), db)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
