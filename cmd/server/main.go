package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	_ "modernc.org/sqlite"

	emailPkg "hoejeong/internal/adapters/email"
	web "hoejeong/internal/adapters/http"
	"hoejeong/internal/adapters/http/middleware"
	"hoejeong/internal/adapters/http/perf"
	"hoejeong/internal/adapters/storage"
	"hoejeong/internal/adapters/storage/cache"
	"hoejeong/internal/adapters/storage/lock"
	"hoejeong/internal/adapters/storage/workbook"
	"hoejeong/internal/application/orchestrators"
	"hoejeong/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_event", "event", "invalid_config", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg)

	if err := run(cfg); err != nil {
		slog.Error("server_event", "event", "fatal", "error", err)
		os.Exit(1)
	}
}

func setupLogging(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h).With("app", "hoejeong", "version", version))
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	now := func() time.Time { return time.Now().In(cfg.Location) }
	collector := perf.NewCollector(perf.DefaultRingSize)

	backend, closeBackend, err := openBackend(cfg, collector)
	if err != nil {
		return err
	}
	defer closeBackend()

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		if rdb, err = cache.NewRedisClient(ctx, cfg.RedisURL); err != nil {
			return err
		}
		defer rdb.Close()
	}

	// Cache outermost so hits skip the timing wrapper; misses are still timed.
	var store storage.RecordStore = storage.NewTimedStore(backend, collector, storage.SlowQueryThreshold())
	var locker orchestrators.TableLocker
	ttl := cache.ClampTTL(cfg.CacheTTL)
	if rdb != nil {
		store = cache.New(store, cache.NewRedisBackend(rdb, ttl))
		locker = lock.NewRedis(rdb, cfg.LockTTL)
	} else {
		store = cache.New(store, cache.NewMemoryBackend(ttl))
		locker = lock.NewLocal(cfg.LockTTL)
	}

	if err := seedAdmin(ctx, cfg, store, locker); err != nil {
		return err
	}

	scheduler, err := startDigest(cfg, store, now)
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer func() { <-scheduler.Stop().Done() }()
	}

	handler := web.NewMux(web.Deps{
		Store:          store,
		Locker:         locker,
		Collector:      collector,
		Now:            now,
		CSRFKey:        cfg.CSRFKey,
		SecureCookies:  cfg.SecureCookies,
		TrustedOrigins: cfg.TrustedOrigins,
		SlowRequest:    middleware.SlowRequestThreshold(),
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_event", "event", "listening", "addr", cfg.Addr, "env", cfg.Env,
			"store", cfg.Store, "redis", rdb != nil, "timezone", cfg.Location.String())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_event", "event", "shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openBackend opens the configured record store. The returned close func is never nil.
func openBackend(cfg *config.Config, collector *perf.Collector) (storage.RecordStore, func(), error) {
	if cfg.Store == config.StoreWorkbook {
		slog.Info("storage_event", "event", "workbook_opened", "path", cfg.WorkbookPath)
		return workbook.New(cfg.WorkbookPath), func() {}, nil
	}

	// WAL mode, busy timeout and NORMAL sync for a single-file deployment.
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("database unreachable: %w", err)
	}
	if err := storage.MigrateDB(db, cfg.DBPath); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	slog.Info("storage_event", "event", "database_ready", "path", cfg.DBPath, "schema", storage.LatestSchemaVersion())

	timed := storage.NewTimedDB(db, collector, storage.SlowQueryThreshold())
	return storage.NewSQLiteRecordStore(timed), func() { db.Close() }, nil
}

// seedAdmin creates the bootstrap admin on an empty users table.
func seedAdmin(ctx context.Context, cfg *config.Config, store storage.RecordStore, locker orchestrators.TableLocker) error {
	if cfg.AdminLogin == "" || cfg.AdminPassword == "" {
		slog.Warn("account_event", "event", "seed_skipped", "reason", "admin credentials not configured")
		return nil
	}
	acct, err := orchestrators.ExecuteSeedAdmin(ctx, orchestrators.SeedAdminInput{
		Login:    cfg.AdminLogin,
		Password: cfg.AdminPassword,
		Name:     cfg.AdminName,
	}, orchestrators.SaveAccountDeps{Store: store, Locker: locker})
	switch {
	case errors.Is(err, orchestrators.ErrSeedSkipped):
		return nil
	case err != nil:
		return fmt.Errorf("seed admin: %w", err)
	}
	slog.Info("account_event", "event", "admin_seeded", "login", acct.Login)
	return nil
}

// startDigest schedules the monthly birthday email. Returns nil when no
// recipients are configured.
func startDigest(cfg *config.Config, store storage.RecordStore, now func() time.Time) (*cron.Cron, error) {
	if len(cfg.DigestTo) == 0 {
		return nil, nil
	}
	var sender emailPkg.Sender
	if cfg.ResendAPIKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendAPIKey, cfg.DigestFrom)
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("digest_event", "event", "sender_disabled", "hint", "set "+config.Prefix+"RESEND_API_KEY")
		}
	}
	deps := orchestrators.SendBirthdayDigestDeps{
		Store:  store,
		Sender: sender,
		From:   cfg.DigestFrom,
		To:     cfg.DigestTo,
		Now:    now,
	}

	c := cron.New(cron.WithLocation(cfg.Location))
	_, err := c.AddFunc(cfg.DigestCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := orchestrators.ExecuteSendBirthdayDigest(ctx, orchestrators.SendBirthdayDigestInput{}, deps); err != nil {
			slog.Error("digest_event", "event", "digest_failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%sDIGEST_CRON %q: %w", config.Prefix, cfg.DigestCron, err)
	}
	c.Start()
	slog.Info("digest_event", "event", "digest_scheduled", "schedule", cfg.DigestCron, "recipients", len(cfg.DigestTo))
	return c, nil
}
