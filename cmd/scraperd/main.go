// Package main wires together the company scraper service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gpubsub "cloud.google.com/go/pubsub"
	gcstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/dataintel/company-scraper/internal/api"
	"github.com/dataintel/company-scraper/internal/clock/system"
	"github.com/dataintel/company-scraper/internal/config"
	"github.com/dataintel/company-scraper/internal/extract"
	"github.com/dataintel/company-scraper/internal/fetcher/firecrawl"
	"github.com/dataintel/company-scraper/internal/fetcher/site"
	"github.com/dataintel/company-scraper/internal/hash/sha256"
	"github.com/dataintel/company-scraper/internal/id/uuid"
	"github.com/dataintel/company-scraper/internal/logging"
	"github.com/dataintel/company-scraper/internal/metrics"
	"github.com/dataintel/company-scraper/internal/orchestrator"
	memorypublisher "github.com/dataintel/company-scraper/internal/publisher/memory"
	pubsubpublisher "github.com/dataintel/company-scraper/internal/publisher/pubsub"
	"github.com/dataintel/company-scraper/internal/scraper"
	"github.com/dataintel/company-scraper/internal/storage/gcs"
	"github.com/dataintel/company-scraper/internal/storage/local"
	memorystorage "github.com/dataintel/company-scraper/internal/storage/memory"
	"github.com/dataintel/company-scraper/internal/storage/postgres"
	"github.com/dataintel/company-scraper/internal/worker"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := system.New()
	idGen := uuid.New()
	hasher := sha256.New()

	jobStore, resultStore, closeStores, err := buildStores(ctx, cfg, clock)
	if err != nil {
		logger.Fatal("store init failed", zap.Error(err))
	}
	defer closeStores()

	blobStore, err := buildBlobStore(ctx, cfg)
	if err != nil {
		logger.Fatal("blob store init failed", zap.Error(err))
	}

	publisher, closePublisher, err := buildPublisher(ctx, cfg)
	if err != nil {
		logger.Fatal("publisher init failed", zap.Error(err))
	}
	defer closePublisher()

	fetcher, err := buildFetcher(cfg)
	if err != nil {
		logger.Fatal("fetcher init failed", zap.Error(err))
	}

	w := worker.New(
		jobStore,
		resultStore,
		blobStore,
		publisher,
		fetcher,
		extract.New(clock),
		hasher,
		clock,
		idGen,
		worker.Config{
			Provider:     cfg.Fetcher.Provider,
			ContentType:  cfg.Storage.ContentType,
			BlobPrefix:   cfg.Storage.Prefix,
			Topic:        cfg.PubSub.TopicName,
			FetchTimeout: cfg.FetchTimeout(),
		},
		logger.Named("worker"),
	)

	orch := orchestrator.New(jobStore, w, orchestrator.Config{
		Concurrency:  cfg.Scraper.Concurrency,
		PageSize:     cfg.Scraper.PageSize,
		FetchTimeout: cfg.FetchTimeout(),
	}, logger.Named("orchestrator"))

	poller := orchestrator.NewPoller(orch, cfg.PollInterval(), logger.Named("poller"))
	go poller.Run(ctx)

	apiServer := api.NewServer(jobStore, resultStore, orch, idGen, clock, cfg, logger.Named("api"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
}

func buildStores(ctx context.Context, cfg config.Config, clock scraper.Clock) (scraper.JobStore, scraper.ResultStore, func(), error) {
	if cfg.DB.DSN == "" {
		return memorystorage.NewJobStore(), memorystorage.NewResultStore(), func() {}, nil
	}
	pool, err := postgres.NewPool(ctx, postgres.Config{
		DSN:             cfg.DB.DSN,
		MaxConns:        int32(cfg.DB.MaxConns),
		MinConns:        int32(cfg.DB.MinConns),
		MaxConnLifetime: time.Duration(cfg.DB.MaxConnLifetimeMin) * time.Minute,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return postgres.NewJobStore(pool, clock), postgres.NewResultStore(pool), pool.Close, nil
}

func buildBlobStore(ctx context.Context, cfg config.Config) (scraper.BlobStore, error) {
	switch cfg.Storage.Backend {
	case "gcs":
		client, err := gcstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create gcs client: %w", err)
		}
		return gcs.New(client, gcs.Config{Bucket: cfg.Storage.GCSBucket})
	case "local":
		return local.New(local.Config{BaseDir: cfg.Storage.LocalDir})
	default:
		return memorystorage.NewBlobStore(), nil
	}
}

func buildPublisher(ctx context.Context, cfg config.Config) (scraper.Publisher, func(), error) {
	if cfg.PubSub.ProjectID == "" || cfg.PubSub.TopicName == "" {
		return memorypublisher.New(), func() {}, nil
	}
	client, err := gpubsub.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("create pubsub client: %w", err)
	}
	pub := pubsubpublisher.New(client)
	closeFn := func() {
		pub.Stop()
		if err := client.Close(); err != nil {
			zap.L().Warn("close pubsub client", zap.Error(err))
		}
	}
	return pub, closeFn, nil
}

func buildFetcher(cfg config.Config) (scraper.Fetcher, error) {
	switch cfg.Fetcher.Provider {
	case "firecrawl":
		return firecrawl.New(firecrawl.Config{
			APIKey:  cfg.Fetcher.APIKey,
			BaseURL: cfg.Fetcher.BaseURL,
			Timeout: cfg.FetchTimeout(),
		})
	default:
		return site.New(site.Config{
			UserAgent:     cfg.Fetcher.UserAgent,
			RespectRobots: cfg.Fetcher.RespectRobots,
			Timeout:       cfg.FetchTimeout(),
			RPS:           cfg.Fetcher.RPS,
			Burst:         cfg.Fetcher.Burst,
		}), nil
	}
}
