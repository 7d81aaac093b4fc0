package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"access-gate/internal/audit"
	audithandler "access-gate/internal/audit/handler"
	"access-gate/internal/decision"
	decisionmetrics "access-gate/internal/decision/metrics"
	"access-gate/internal/directory"
	directoryhandler "access-gate/internal/directory/handler"
	"access-gate/internal/iptracker"
	"access-gate/internal/pathclass"
	"access-gate/internal/permcache"
	"access-gate/internal/platform/config"
	"access-gate/internal/platform/httpserver"
	"access-gate/internal/platform/logger"
	"access-gate/internal/platform/postgres"
	"access-gate/internal/platform/redis"
	"access-gate/internal/policy"
	"access-gate/internal/session"
	"access-gate/internal/stats"
	httptransport "access-gate/internal/transport/http"
)

// main wires stores, services, and the HTTP router. Business logic lives in
// the internal packages; this file only connects them.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	redisOpts, err := config.RedisFromEnv()
	if err != nil {
		log.Error("invalid redis configuration", "error", err)
		os.Exit(1)
	}
	redisClient, err := redis.New(cfg.RedisURL, redisOpts)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Stores fall back to in-memory implementations when Postgres is not
	// configured, which keeps local development dependency-free.
	var (
		directoryStore directory.Store
		auditStore     audit.Store
		ipStore        iptracker.Store
	)
	if db != nil {
		directoryStore = directory.NewPostgres(db)
		auditStore = audit.NewPostgres(db)
		ipStore = iptracker.NewPostgres(db)
	} else {
		log.Warn("postgres not configured, using in-memory stores")
		directoryStore = directory.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
		ipStore = iptracker.NewInMemoryStore()
	}

	// With Redis configured the origin hot path (known-address sets and the
	// flagged set) is shared across instances. The mirrored store routes the
	// administrative flag and link mutations into Redis too, so the engine's
	// IsFlagged check and the /ips endpoints agree on one state.
	var originChecker iptracker.Checker = ipStore
	if redisClient != nil {
		mirrored := iptracker.NewMirroredStore(ipStore, iptracker.NewRedisChecker(redisClient.Client))
		ipStore = mirrored
		originChecker = mirrored
	}

	auditService := audit.NewService(auditStore, log, cfg.StoreTimeout)
	directoryService := directory.NewService(directoryStore, log, cfg.StoreTimeout)
	permCache := permcache.New(cfg.PermCacheSize, cfg.PermCacheTTL)

	classifier, err := pathclass.New(pathclass.DefaultPermissionTable())
	if err != nil {
		log.Error("invalid permission table", "error", err)
		os.Exit(1)
	}

	var policyReader policy.Store = directoryStore
	engine := decision.NewEngine(
		classifier,
		policyReader,
		permCache,
		iptracker.New(originChecker),
		auditService,
		log,
		decisionmetrics.New(),
		cfg.StoreTimeout,
	)

	tokenService := session.NewTokenService(cfg.JWTSigningKey, cfg.JWTIssuer)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Engine:         engine,
		TokenValidator: tokenService,
		Handlers: []httptransport.Registerer{
			directoryhandler.New(directoryService, ipStore, log),
			audithandler.New(auditService, log),
			session.NewHandler(engine, permCache, log),
			stats.NewHandler(stats.NewService(directoryService, auditService), log),
		},
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		Health:            healthCheck(db, redisClient),
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting access-gate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// healthCheck pings every configured backing store. In-memory deployments
// have nothing to probe and always report healthy.
func healthCheck(db *sql.DB, redisClient *redis.Client) func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				return errors.New("postgres unreachable")
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				return errors.New("redis unreachable")
			}
		}
		return nil
	}
}
