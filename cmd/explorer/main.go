package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/draymottishaw/college-assisted-explorer/internal/api/rest"
	"github.com/draymottishaw/college-assisted-explorer/internal/api/websocket"
	"github.com/draymottishaw/college-assisted-explorer/internal/cache"
	"github.com/draymottishaw/college-assisted-explorer/internal/config"
	"github.com/draymottishaw/college-assisted-explorer/internal/dataset"
	"github.com/draymottishaw/college-assisted-explorer/internal/derive"
	"github.com/draymottishaw/college-assisted-explorer/internal/logger"
	"github.com/draymottishaw/college-assisted-explorer/internal/publisher"
	"github.com/draymottishaw/college-assisted-explorer/internal/scheduler"
	"github.com/draymottishaw/college-assisted-explorer/internal/service"
	"github.com/draymottishaw/college-assisted-explorer/internal/store"
	"github.com/draymottishaw/college-assisted-explorer/internal/store/repository"
)

const (
	serviceName    = "college-assisted-explorer"
	serviceVersion = "1.0.0"

	maxRetries = 10
	retryDelay = 2 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	log.Infof("Starting %s v%s - Assisted Shot Explorer", serviceName, serviceVersion)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checks := make(map[string]rest.HealthCheck)
	opts := service.DatasetOptions{
		OutputDir:    cfg.OutputDir,
		WriteOutputs: cfg.WriteOutputs,
	}

	// Postgres is optional; without it reloads are served from memory only.
	if cfg.DatabaseURL != "" {
		db, err := store.NewDatabase(cfg.DatabaseURL, logger.WithComponent("store"))
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Info("✓ Connected to database")

		if err := db.RunMigrations(ctx); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}
		log.Info("✓ Database migrations applied")

		opts.Store = repository.NewCareerRepository(db)
		checks["database"] = db.HealthCheck
	} else {
		log.Warn("⚠️  DATABASE_URL not set, persistence disabled")
	}

	var similarityCache service.Cache
	if cfg.RedisURL != "" {
		var redisCache *cache.RedisCache
		err := retry(log, "Redis", func() (err error) {
			redisCache, err = cache.NewRedisCache(cfg.RedisURL, "explorer:")
			return err
		})
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisCache.Close()
		log.Info("✓ Connected to Redis")

		similarityCache = redisCache
		checks["redis"] = redisCache.HealthCheck
		opts.Publisher = publisher.NewRedisPublisherFromClient(redisCache.Client())
		log.Info("✓ Redis publisher initialized")
	} else {
		log.Warn("⚠️  REDIS_URL not set, similarity cache and events disabled")
	}

	manifest, err := loadManifest(cfg)
	if err != nil {
		log.Fatalf("Failed to load sources manifest: %v", err)
	}

	holder := dataset.NewHolder(nil)
	similar := service.NewSimilarityService(holder, similarityCache, cfg.CacheTTL, cfg.SimilarityTopN, logger.WithComponent("similarity"))
	opts.Cache = similar

	wsServer := websocket.NewServer(func() dataset.Summary { return holder.Load().Summary() }, cfg.CorsOrigins, logger.WithComponent("websocket"))
	opts.Notifier = wsServer

	datasets := service.NewDatasetService(derive.NewRunner(manifest), holder, opts, logger.WithComponent("dataset"))

	reload, err := datasets.Reload(ctx)
	if err != nil {
		log.WithError(err).Warn("⚠️  Initial derivation failed, trying stored tables")
		summary, storeErr := datasets.LoadFromStore(ctx)
		if storeErr != nil {
			log.Fatalf("No dataset available: derive: %v; store: %v", err, storeErr)
		}
		log.WithField("populations", summary.Populations).Info("✓ Dataset loaded from store")
	} else {
		for name, reason := range reload.Failures {
			log.WithFields(logrus.Fields{"dataset": name, "reason": reason}).Warn("⚠️  Dataset not derived")
		}
		log.WithField("populations", reload.Summary.Populations).Info("✓ Dataset derived")
	}

	sched := scheduler.NewOrchestrator(datasets, &scheduler.Config{
		ReloadInterval:  cfg.ReloadInterval,
		DailyReloadHour: cfg.DailyReloadHour,
		MaxRetries:      cfg.ReloadRetries,
		RetryDelay:      5 * time.Second,
	}, logger.WithComponent("scheduler"))
	if sched.Enabled() {
		sched.Start(ctx)
		log.Info("✓ Reload scheduler started")
	}

	handler := rest.NewHandler(
		service.NewExplorerService(holder, cfg.FirstSeason, cfg.CurrentSeason),
		service.NewProfileService(holder),
		similar,
		datasets,
		checks,
		serviceVersion,
	)

	restServer := rest.NewServer(cfg.RESTPort, handler, cfg.CorsOrigins)
	go func() {
		if err := restServer.Start(); err != nil && err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()
	log.Infof("✓ REST API server listening on :%s", cfg.RESTPort)

	go func() {
		if err := wsServer.Start(cfg.WSPort); err != nil && err != http.ErrServerClosed {
			log.Errorf("WebSocket server error: %v", err)
		}
	}()
	log.Infof("✓ WebSocket server listening on :%s", cfg.WSPort)

	log.Infof("✓ %s v%s started successfully", serviceName, serviceVersion)
	log.Infof("  REST API: http://0.0.0.0:%s/api/v1", cfg.RESTPort)
	log.Infof("  WebSocket: ws://0.0.0.0:%s/ws/dataset", cfg.WSPort)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down gracefully...")
	cancel()
	if sched.Enabled() {
		sched.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("REST API server shutdown error: %v", err)
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("WebSocket server shutdown error: %v", err)
	}

	log.Info("Stopped")
}

// loadManifest reads the sources manifest, pointing it at DATA_DIR unless
// the file names its own directory.
func loadManifest(cfg *config.Config) (*derive.Manifest, error) {
	m, err := derive.LoadManifest(cfg.SourcesManifest)
	if err != nil {
		return nil, err
	}
	if cfg.DataDir != "" && m.DataDir == derive.DefaultManifest().DataDir {
		m.DataDir = cfg.DataDir
	}
	return m, nil
}

func retry(log *logrus.Logger, name string, connect func() error) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		if err = connect(); err == nil {
			return nil
		}
		if i < maxRetries-1 {
			log.Warnf("%s connection attempt %d/%d failed: %v (retrying in %v)", name, i+1, maxRetries, err, retryDelay)
			time.Sleep(retryDelay)
		}
	}
	return err
}
