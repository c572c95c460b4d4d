package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/bryanwahyu/string-analyzer/internal/application"
	appanalysis "github.com/bryanwahyu/string-analyzer/internal/application/analysis"
	"github.com/bryanwahyu/string-analyzer/internal/config"
	domain "github.com/bryanwahyu/string-analyzer/internal/domain/analysis"
	"github.com/bryanwahyu/string-analyzer/internal/infra/cache"
	"github.com/bryanwahyu/string-analyzer/internal/infra/db/memory"
	mysqlp "github.com/bryanwahyu/string-analyzer/internal/infra/db/mysql"
	"github.com/bryanwahyu/string-analyzer/internal/infra/db/postgres"
	"github.com/bryanwahyu/string-analyzer/internal/infra/db/sqlite"
	"github.com/bryanwahyu/string-analyzer/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/string-analyzer/internal/infra/storage"
	"github.com/bryanwahyu/string-analyzer/internal/logger"
	"github.com/bryanwahyu/string-analyzer/internal/middleware"
)

type schemaRepository interface {
	domain.Repository
	EnsureSchema(ctx context.Context) error
}

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	lg, err := logger.New(cfg.Log.JSON, cfg.Log.Level)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer lg.Sync()

	ctx := context.Background()
	checkers := map[string]middleware.HealthChecker{}

	// init repo
	repo, db, err := openRepository(ctx, cfg)
	if err != nil {
		lg.Fatal("database init error", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	if db != nil {
		defer db.Close()
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}
	if cfg.Cache.Enabled {
		repo = cache.NewStringRepository(repo, cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	}

	// init minio, optional
	var snapshots domain.SnapshotStore
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			lg.Fatal("minio init error", zap.Error(err))
		}
		snapshots = store
		checkers["minio"] = store
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		lg.Fatal("metrics init error", zap.Error(err))
	}

	// init service
	svc := &appanalysis.Service{
		Repo:      repo,
		Snapshots: snapshots,
		Clock:     application.SystemClock{},
		Recorder:  metrics,
		Log:       lg,
	}

	opts := httpserver.Options{
		Log:            lg,
		Metrics:        metrics,
		HealthCheckers: checkers,
		CORSOrigins:    cfg.Server.CORSOrigins,
		APIKeys:        cfg.Auth.APIKeys,
	}
	stopSweep := make(chan struct{})
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		go limiter.Run(stopSweep)
		opts.RateLimiter = limiter
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpserver.NewRouter(svc, opts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// run server
	go func() {
		lg.Info("server listening", zap.String("addr", addr), zap.String("driver", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	lg.Info("shutting down server")
	close(stopSweep)

	ctx2, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		lg.Error("shutdown error", zap.Error(err))
	}
}

// openRepository connects the configured store and makes sure its table
// exists. db is nil for the memory driver.
func openRepository(ctx context.Context, cfg *config.Config) (domain.Repository, *sql.DB, error) {
	var (
		db   *sql.DB
		repo schemaRepository
		err  error
	)
	switch cfg.Database.Driver {
	case config.DriverMemory:
		return memory.NewStringRepository(), nil, nil
	case config.DriverMySQL:
		if db, err = mysqlp.Connect(ctx, cfg.MySQLDSN()); err != nil {
			return nil, nil, err
		}
		repo = mysqlp.NewStringRepository(db)
	case config.DriverSQLite:
		if db, err = sqlite.Connect(ctx, cfg.SQLitePath()); err != nil {
			return nil, nil, err
		}
		repo = sqlite.NewStringRepository(db)
	default:
		if db, err = postgres.Connect(ctx, cfg.PostgresDSN()); err != nil {
			return nil, nil, err
		}
		repo = postgres.NewStringRepository(db)
	}

	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return repo, db, nil
}
