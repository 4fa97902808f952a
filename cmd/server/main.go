package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"medivault/internal/access"
	"medivault/internal/audit"
	auditmetrics "medivault/internal/audit/metrics"
	auditmemory "medivault/internal/audit/store/memory"
	auditpostgres "medivault/internal/audit/store/postgres"
	"medivault/internal/auth"
	"medivault/internal/consent"
	consentmetrics "medivault/internal/consent/metrics"
	"medivault/internal/credential"
	"medivault/internal/cryptobox"
	"medivault/internal/platform/config"
	"medivault/internal/platform/httpserver"
	"medivault/internal/platform/logger"
	"medivault/internal/platform/postgres"
	platformredis "medivault/internal/platform/redis"
	"medivault/internal/policy"
	policymetrics "medivault/internal/policy/metrics"
	"medivault/internal/record"
	recordmemory "medivault/internal/record/store/memory"
	recordpostgres "medivault/internal/record/store/postgres"
	"medivault/internal/retention"
	retentionmetrics "medivault/internal/retention/metrics"
	httptransport "medivault/internal/transport/http"
	id "medivault/pkg/domain"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	codec, err := buildCodec(cfg.EncryptionKey)
	if err != nil {
		log.Error("encryption key rejected", "error", err)
		os.Exit(1)
	}

	db, err := postgres.Open(cfg.PostgresURL)
	if err != nil {
		log.Error("postgres unavailable", "error", err)
		os.Exit(1)
	}

	var (
		auditStore  audit.Store
		recordStore record.Store
	)
	if db != nil {
		auditStore = auditpostgres.New(db)
		recordStore = recordpostgres.New(db)
	} else {
		auditStore = auditmemory.New()
		recordStore = recordmemory.New()
	}

	auditor := audit.NewPublisher(auditStore, log, auditmetrics.New())

	var consentStore consent.Store
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		consentStore = consent.NewRedisStore(redisClient.Client, cfg.SessionTTL)
		defer redisClient.Close()
	} else {
		consentStore = consent.NewInMemoryStore()
	}
	gate := consent.NewGate(consentStore, auditor, log, consentmetrics.New())

	resolver := policy.NewResolver(policy.Default(), codec, log, policymetrics.New())
	accessSvc := access.New(gate, recordStore, resolver, auditor, codec, log)
	reporter := retention.NewReporter(recordStore, auditor, cfg.RetentionWarnDays, retentionmetrics.New())

	creds, err := credential.New(cfg.BcryptCost, log)
	if err != nil {
		log.Error("credential store rejected configuration", "error", err)
		os.Exit(1)
	}
	tokens := auth.NewTokenIssuer([]byte(cfg.JWTSigningKey), cfg.SessionTTL)
	users := auth.NewInMemoryUserStore()
	authSvc := auth.NewService(users, creds, tokens, auditor, log)

	if db == nil {
		seedDevUsers(authSvc, log)
	}

	handler := httptransport.NewHandler(log, authSvc, gate, accessSvc, reporter)
	router := httptransport.NewRouter(handler, tokens)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting medivault", "addr", cfg.Addr, "postgres", db != nil, "redis", redisClient != nil)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// buildCodec loads the field-encryption key from config. Development runs
// without a configured key get an ephemeral one: encrypted fields then only
// survive the process, which is the safe default.
func buildCodec(encoded string) (*cryptobox.Codec, error) {
	if encoded == "" {
		generated, err := cryptobox.GenerateKey()
		if err != nil {
			return nil, err
		}
		encoded = generated
	}
	return cryptobox.NewFromBase64(encoded)
}

// seedDevUsers provisions demo principals for in-memory runs.
func seedDevUsers(authSvc *auth.Service, log *slog.Logger) {
	ctx := context.Background()
	seeds := []struct {
		username, fullName, password string
		role                         id.Role
	}{
		{"admin", "System Administrator", "admin123", id.RoleAdmin},
		{"dr_bob", "Dr. Bob Mansoor", "admin123", id.RoleClinician},
		{"alice_recep", "Alice Mahmood", "admin123", id.RoleFrontdesk},
	}
	for _, seed := range seeds {
		if _, err := authSvc.Register(ctx, seed.username, seed.fullName, seed.password, seed.role); err != nil {
			log.Warn("could not seed user", "username", seed.username, "error", err)
		}
	}
}
