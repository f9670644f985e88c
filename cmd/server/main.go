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

	"opptak/internal/admission"
	admissionhandler "opptak/internal/admission/handler"
	admissionmetrics "opptak/internal/admission/metrics"
	"opptak/internal/audit"
	"opptak/internal/auth"
	authhandler "opptak/internal/auth/handler"
	"opptak/internal/batch"
	batchhandler "opptak/internal/batch/handler"
	"opptak/internal/capacity"
	capacityhandler "opptak/internal/capacity/handler"
	"opptak/internal/placement"
	placementhandler "opptak/internal/placement/handler"
	placementmetrics "opptak/internal/placement/metrics"
	"opptak/internal/platform/config"
	"opptak/internal/platform/httpserver"
	"opptak/internal/platform/logger"
	"opptak/internal/platform/redis"
	httptransport "opptak/internal/transport/http"
	id "opptak/pkg/domain"
)

// main wires storage, services, and the HTTP surface. Every store has an
// in-memory default so the service runs without external infrastructure;
// postgres, redis, and kafka attach when configured.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	// Application store: postgres when configured, memory otherwise.
	var apps admission.ApplicationStore
	if cfg.PostgresDSN != "" {
		store, err := admission.NewPostgresApplicationStore(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("application store init failed", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		apps = store
	} else {
		apps = admission.NewInMemoryApplicationStore()
	}

	// Audit trail with optional kafka fan-out.
	var auditStore audit.Store
	if cfg.PostgresDSN != "" {
		store, err := audit.NewPostgresStore(cfg.PostgresDSN)
		if err != nil {
			log.Error("audit store init failed", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		auditStore = store
	} else {
		auditStore = audit.NewInMemoryStore()
	}
	var publisher audit.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := audit.NewKafkaPublisher(ctx, cfg.KafkaBrokers)
		if err != nil {
			log.Error("kafka publisher init failed", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		publisher = kafka
	}
	auditor := audit.NewService(auditStore, publisher, log)

	// Waiting lists: redis sorted sets when configured, memory otherwise.
	var waitlist capacity.WaitlistStore = capacity.NewInMemoryWaitlist()
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		waitlist = capacity.NewRedisWaitlist(redisClient.Client)
	}

	ledger := capacity.NewLedger(waitlist)
	if cfg.CapacityFile != "" {
		kindergartens, err := capacity.LoadSnapshot(cfg.CapacityFile)
		if err != nil {
			log.Error("capacity snapshot load failed", "file", cfg.CapacityFile, "error", err)
			os.Exit(1)
		}
		ledger.Seed(kindergartens)
		log.Info("capacity ledger seeded", "kindergartens", len(kindergartens))
	}

	// Decision log and schedules follow the application store: postgres when
	// configured, memory otherwise. The decision log doubles as the admission
	// module's placement resolver, so both must share one backend.
	var decisions placement.DecisionLog
	var schedules placement.ScheduleStore
	if cfg.PostgresDSN != "" {
		decisionStore, err := placement.NewPostgresDecisionStore(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("decision store init failed", "error", err)
			os.Exit(1)
		}
		defer decisionStore.Close()
		decisions = decisionStore

		scheduleStore, err := placement.NewPostgresScheduleStore(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("schedule store init failed", "error", err)
			os.Exit(1)
		}
		defer scheduleStore.Close()
		schedules = scheduleStore
	} else {
		decisions = placement.NewInMemoryDecisionStore()
		schedules = placement.NewInMemoryScheduleStore()
	}
	matcher := placement.NewMatcher(ledger, log)
	coordinator := placement.NewCoordinator(matcher, ledger, schedules)

	admissionSvc := admission.NewService(apps, decisions, auditor, log, admissionmetrics.New())
	placementSvc := placement.NewService(apps, decisions, matcher, coordinator, auditor, log, placementmetrics.New())

	staffStore := auth.NewInMemoryStaffStore()
	seedBootstrapAdmin(staffStore, cfg.BootstrapAdmin, log)
	authSvc := auth.NewService(staffStore, []byte(cfg.JWTSigningKey))

	runner := batch.NewRunner(cfg.BatchConcurrency, log)
	registry := batch.NewRegistry(admissionSvc, placementSvc)

	router := httptransport.NewRouter(httptransport.Handlers{
		Admission: admissionhandler.New(admissionSvc, log),
		Placement: placementhandler.New(placementSvc, log),
		Capacity:  capacityhandler.New(ledger, log),
		Batch:     batchhandler.New(runner, registry, log),
		Auth:      authhandler.New(authSvc, log),
	}, authSvc)

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting opptak", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

func seedBootstrapAdmin(store *auth.InMemoryStaffStore, creds config.Credentials, log *slog.Logger) {
	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		log.Warn("bootstrap admin seeding failed", "error", err)
		return
	}
	store.Seed(auth.Staff{
		ID:           id.NewStaffID(),
		Username:     creds.Username,
		PasswordHash: hash,
		Role:         id.RoleAdmin,
		DisplayName:  "Bootstrap Administrator",
	})
}
