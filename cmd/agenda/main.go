package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/agenda/internal/config"
	dbPostgres "github.com/kailas-cloud/agenda/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/agenda/internal/db/redis"
	dbValkey "github.com/kailas-cloud/agenda/internal/db/valkey"
	logpkg "github.com/kailas-cloud/agenda/internal/logger"
	"github.com/kailas-cloud/agenda/internal/metrics"
	"github.com/kailas-cloud/agenda/internal/ratelimit"
	categoryrepo "github.com/kailas-cloud/agenda/internal/repository/category"
	contactrepo "github.com/kailas-cloud/agenda/internal/repository/contact"
	ratelimitrepo "github.com/kailas-cloud/agenda/internal/repository/ratelimit"
	chiTransport "github.com/kailas-cloud/agenda/internal/transport/chi"
	cloudinaryPhotos "github.com/kailas-cloud/agenda/internal/transport/cloudinary"
	natsEvents "github.com/kailas-cloud/agenda/internal/transport/nats"
	categoryuc "github.com/kailas-cloud/agenda/internal/usecase/category"
	contactuc "github.com/kailas-cloud/agenda/internal/usecase/contact"
	healthuc "github.com/kailas-cloud/agenda/internal/usecase/health"
	searchuc "github.com/kailas-cloud/agenda/internal/usecase/search"
	"github.com/kailas-cloud/agenda/internal/version"
)

// contactStore is what every contact backend provides: CRUD plus the query interface.
type contactStore interface {
	contactuc.Repository
	searchuc.Documents
}

// counterStore backs the shared rate limiter.
type counterStore interface {
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// backend is the storage selected by database.driver.
type backend struct {
	contacts   contactStore
	categories categoryuc.Repository
	pinger     healthuc.Pinger
	counters   counterStore // nil for postgres
	close      func()
}

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting agenda API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	ctx := context.Background()
	be, err := openBackend(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer be.close()

	metrics.RegisterSearchMetrics()

	searchSvc := searchuc.New(be.contacts).
		WithOverfetch(cfg.Search.OverfetchMultiplier).
		WithPagination(cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize).
		WithLogger(logger)
	contactSvc := contactuc.New(be.contacts, be.categories, searchSvc).WithLogger(logger)
	categorySvc := categoryuc.New(be.categories)

	if cfg.Photos.Enabled() {
		photos, err := cloudinaryPhotos.NewPhotoStore(&cloudinaryPhotos.Config{
			CloudName: cfg.Photos.CloudName,
			APIKey:    cfg.Photos.APIKey,
			APISecret: cfg.Photos.APISecret,
			Folder:    cfg.Photos.Folder,
			Logger:    logger,
		})
		if err != nil {
			logger.Fatal("Failed to configure photo storage", zap.Error(err))
		}
		contactSvc.WithPhotos(photos)
		logger.Info("Photo storage enabled", zap.String("folder", cfg.Photos.Folder))
	}

	// Pass a nil interface, not a typed nil pointer, when events are disabled.
	var eventsHealth healthuc.Checker
	if cfg.Events.NATSURL != "" {
		pub, err := natsEvents.Connect(cfg.Events.NATSURL, cfg.Events.SubjectPrefix, logger)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer func() { _ = pub.Close() }()
		contactSvc.WithEvents(pub)
		eventsHealth = pub
		logger.Info("Event publishing enabled", zap.String("subject_prefix", cfg.Events.SubjectPrefix))
	}

	healthSvc := healthuc.New(be.pinger, eventsHealth)

	limiter, stopLimiter := buildLimiter(cfg, be, logger)
	defer stopLimiter()

	server := chiTransport.NewServer(searchSvc, contactSvc, categorySvc, healthSvc, logger).
		WithMaxUpload(int64(cfg.HTTP.MaxUploadMB) << 20)
	handler := server.Router(chiTransport.RouterConfig{
		Auth:          chiTransport.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer),
		MetricsKeys:   cfg.Auth.APIKeys,
		PublicLimiter: limiter,
		Middlewares:   []func(http.Handler) http.Handler{metrics.Middleware()},
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openBackend connects to the configured database, waits for it and prepares the schema.
func openBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (*backend, error) {
	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pg, err := dbPostgres.New(ctx, dbPostgres.Config{DSN: cfg.Database.DSN})
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := pg.WaitForReady(ctx, readiness); err != nil {
			pg.Close()
			return nil, err
		}
		contacts := contactrepo.NewPG(pg.Pool)
		categories := categoryrepo.NewPG(pg.Pool)
		if err := contacts.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		if err := categories.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		logger.Info("Connected to PostgreSQL")
		return &backend{contacts: contacts, categories: categories, pinger: pg, close: pg.Close}, nil

	case config.DriverRedis, config.DriverValkey:
		connCfg := dbRedis.Config{Addrs: cfg.Database.Addrs, Password: cfg.Database.Password}
		var (
			contacts *contactrepo.Repo
			kv       *dbRedis.Store
		)
		if cfg.Database.Driver == config.DriverValkey {
			vs, err := dbValkey.NewStore(connCfg)
			if err != nil {
				return nil, err
			}
			contacts = contactrepo.New(vs, cfg.Storage.KeyPrefix)
			kv = vs.Store
		} else {
			rs, err := dbRedis.NewStore(connCfg)
			if err != nil {
				return nil, err
			}
			contacts = contactrepo.New(rs, cfg.Storage.KeyPrefix)
			kv = rs
		}
		if err := kv.WaitForReady(ctx, readiness); err != nil {
			kv.Close()
			return nil, err
		}
		if err := contacts.EnsureSchema(ctx); err != nil {
			kv.Close()
			return nil, err
		}
		logger.Info("Connected to database", zap.String("driver", cfg.Database.Driver))
		return &backend{
			contacts:   contacts,
			categories: categoryrepo.New(kv, cfg.Storage.KeyPrefix),
			pinger:     kv,
			counters:   kv,
			close:      kv.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}

// buildLimiter returns the public route limiter and its shutdown hook.
func buildLimiter(cfg config.Config, be *backend, logger *zap.Logger) (chiTransport.Limiter, func()) {
	rl := cfg.RateLimit
	switch rl.Backend {
	case config.RateLimitStore:
		logger.Info("Rate limiting public routes in the shared store",
			zap.Int64("max_requests", rl.MaxRequests), zap.Int("window_sec", rl.WindowSec))
		window := time.Duration(rl.WindowSec) * time.Second
		return ratelimitrepo.New(be.counters, cfg.Storage.KeyPrefix, window, rl.MaxRequests), func() {}
	case config.RateLimitMemory:
		logger.Info("Rate limiting public routes in memory",
			zap.Float64("rps", rl.RPS), zap.Int("burst", rl.Burst))
		krl := ratelimit.New(rl.RPS, rl.Burst, 10*time.Minute)
		return krl, krl.Stop
	default:
		return nil, func() {}
	}
}
